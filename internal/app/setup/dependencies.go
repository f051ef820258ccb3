package setup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/app/background"
	"github.com/LavaJover/shvark-exchange-service/internal/config"
	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/cache"
	publisher "github.com/LavaJover/shvark-exchange-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/receipt"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.ExchangeConfig
	DB           *gorm.DB
	Repositories *Repositories
	RatesCache   domain.RatesCache
	Receipts     domain.ReceiptGenerator
	Notifier     domain.Notifier
	Metrics      *metrics.ExchangeMetrics
	// Проверки для gRPC health
	Probes map[string]background.Pinger

	closers []func() error
}

type Repositories struct {
	BotRepo         domain.BotRepository
	Requesters      domain.RequesterResolver
	Verifier        domain.RequesterVerifier
	Ledger          domain.Ledger
	TransactionRepo domain.TransactionRepository
}

func InitializeDependencies(cfg *config.ExchangeConfig, reg prometheus.Registerer) (*Dependencies, error) {
	exchangeMetrics := metrics.NewExchangeMetrics(reg)

	receipts, err := receipt.NewNanoidGenerator()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:   cfg,
		Receipts: receipts,
		Metrics:  exchangeMetrics,
		Probes:   make(map[string]background.Pinger),
	}

	deps.initRepositories()
	deps.initRatesCache()
	deps.initNotifier()

	return deps, nil
}

func (d *Dependencies) initRepositories() {
	cfg := d.Config
	if cfg.ExchangeDB.Dsn == "" {
		slog.Warn("exchange_db.dsn is empty, using in-memory ledger")
		store := memory.NewStore()
		store.AutoVerify = cfg.Exchange.AutoVerify
		d.Repositories = &Repositories{
			BotRepo:         store,
			Requesters:      store,
			Verifier:        store,
			Ledger:          store,
			TransactionRepo: store,
		}
		return
	}

	db := postgres.MustInitDB(cfg)
	botRepo := repository.NewDefaultBotRepository(db)
	userRepo := repository.NewDefaultUserRepository(db)

	d.DB = db
	d.Repositories = &Repositories{
		BotRepo:         botRepo,
		Requesters:      userRepo,
		Verifier:        userRepo,
		Ledger:          repository.NewDefaultLedger(db),
		TransactionRepo: repository.NewDefaultTransactionRepository(db),
	}
	d.Probes["postgres"] = botRepo
	d.closers = append(d.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
}

func (d *Dependencies) initRatesCache() {
	cfg := d.Config.RedisCache
	if cfg.Addr == "" {
		d.RatesCache = cache.NewRatesMemoryCache(cfg.TTL)
		return
	}

	redisCache := cache.NewRatesRedisCache(cfg.Addr, cfg.Password, cfg.DB, cfg.TTL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		// кэш не обязателен: работаем с кэшем в памяти
		slog.Warn("redis is unreachable, falling back to in-memory rates cache", "addr", cfg.Addr, "error", err)
		_ = redisCache.Close()
		d.RatesCache = cache.NewRatesMemoryCache(cfg.TTL)
		return
	}

	d.RatesCache = redisCache
	d.Probes["redis"] = redisCache
	d.closers = append(d.closers, redisCache.Close)
}

func (d *Dependencies) initNotifier() {
	var sinks []notifier.Sink

	if kafkaCfg := d.Config.KafkaService; kafkaCfg.Enabled() {
		kafkaPublisher := publisher.NewDefaultKafkaPublisher([]string{kafkaCfg.Broker()})
		sinks = append(sinks, publisher.NewTransactionPublisher(kafkaPublisher, kafkaCfg.Topic))
		d.closers = append(d.closers, kafkaPublisher.Close)
	}
	if webhookCfg := d.Config.Webhook; webhookCfg.URL != "" {
		sinks = append(sinks, notifier.NewWebhookNotifier(webhookCfg.URL, webhookCfg.Timeout))
	}

	if len(sinks) == 0 {
		slog.Info("no transaction notifiers configured")
		return
	}
	multi := notifier.NewMultiNotifier(d.Metrics, sinks...)
	slog.Info("transaction notifiers configured", "sinks", multi.Len())
	d.Notifier = multi
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close dependency: %w", err)
		}
	}
	return firstErr
}
