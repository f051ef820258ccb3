package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/receipt"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
	"github.com/LavaJover/shvark-exchange-service/internal/usecase/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Тесты на живой базе: EXCHANGE_TEST_DSN=postgres://... go test ./...
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("EXCHANGE_TEST_DSN")
	if dsn == "" {
		t.Skip("EXCHANGE_TEST_DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrate.RunMigrations(db, "../../../../migrations"))
	require.NoError(t, db.Exec("TRUNCATE transactions, user_counters, verified_users, bots").Error)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedBots(t *testing.T, db *gorm.DB, limitGlobal decimal.Decimal) (*repository.DefaultBotRepository, *domain.Bot) {
	t.Helper()
	ctx := context.Background()
	bots := repository.NewDefaultBotRepository(db)

	for _, bot := range []*domain.Bot{
		{ID: "00000000-0000-0000-0000-000000000001", Owner: "o", Name: "Source", CurrencyCode: "SRC", APIKey: "src-key",
			ToDiscoin: decimal.NewFromInt(1), FromDiscoin: decimal.NewFromInt(1),
			LimitUser: decimal.NewFromInt(domain.DefaultLimitUser), LimitGlobal: decimal.NewFromInt(domain.DefaultLimitGlobal)},
		{ID: "00000000-0000-0000-0000-000000000002", Owner: "o", Name: "Target", CurrencyCode: "DST", APIKey: "dst-key",
			ToDiscoin: decimal.NewFromInt(1), FromDiscoin: decimal.NewFromInt(2),
			LimitUser: decimal.NewFromInt(domain.DefaultLimitUser), LimitGlobal: limitGlobal},
	} {
		require.NoError(t, bots.CreateBot(ctx, bot))
	}

	source, err := bots.GetBotByCurrency(ctx, "SRC")
	require.NoError(t, err)
	return bots, source
}

func newUsecase(t *testing.T, db *gorm.DB, bots *repository.DefaultBotRepository) *exchange.DefaultExchangeUsecase {
	t.Helper()
	receipts, err := receipt.NewNanoidGenerator()
	require.NoError(t, err)
	users := repository.NewDefaultUserRepository(db)
	return exchange.NewDefaultExchangeUsecase(
		bots, users,
		repository.NewDefaultLedger(db),
		repository.NewDefaultTransactionRepository(db),
		nil, receipts, nil, nil, 0,
	)
}

func TestLedger_AdmitAndDecline(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bots, source := seedBots(t, db, decimal.NewFromInt(domain.DefaultLimitGlobal))
	require.NoError(t, repository.NewDefaultUserRepository(db).VerifyRequester(ctx, "SRC", "1234"))
	uc := newUsecase(t, db, bots)

	admission, err := uc.Admit(ctx, &exchangedto.AdmitInput{SourceBot: source, RequesterID: "1234", Amount: "1000", ExchangeTo: "DST"})
	require.NoError(t, err)
	require.True(t, admission.IsApproved())
	assert.True(t, admission.LimitNow.Equal(decimal.NewFromInt(1500)))

	admission, err = uc.Admit(ctx, &exchangedto.AdmitInput{SourceBot: source, RequesterID: "1234", Amount: "2000", ExchangeTo: "DST"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDeclined, admission.Outcome)

	bot, err := bots.GetBotByCurrency(ctx, "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(decimal.NewFromInt(1000)))
	assert.WithinDuration(t, time.Now(), bot.Window.Anchor, time.Minute)

	out, err := uc.ListTransactions(ctx, &exchangedto.ListTransactionsInput{DestinationCurrency: "DST", OnlyUnprocessed: true})
	require.NoError(t, err)
	assert.Len(t, out.Transactions, 1)
}

func TestLedger_ConcurrentGlobalLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bots, source := seedBots(t, db, decimal.NewFromInt(500))
	users := repository.NewDefaultUserRepository(db)
	uc := newUsecase(t, db, bots)

	requesters := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for _, id := range requesters {
		require.NoError(t, users.VerifyRequester(ctx, "SRC", id))
	}

	var wg sync.WaitGroup
	for _, id := range requesters {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := uc.Admit(ctx, &exchangedto.AdmitInput{SourceBot: source, RequesterID: id, Amount: "50", ExchangeTo: "DST"})
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Table("transactions").Count(&count).Error)
	assert.Equal(t, int64(10), count)

	bot, err := bots.GetBotByCurrency(ctx, "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(decimal.NewFromInt(500)))
}
