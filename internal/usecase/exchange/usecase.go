package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/metrics"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
)

type ExchangeUsecase interface {
	Admit(ctx context.Context, input *exchangedto.AdmitInput) (*domain.Admission, error)

	GetTransaction(ctx context.Context, receipt string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input *exchangedto.ListTransactionsInput) (*exchangedto.ListTransactionsOutput, error)
	MarkProcessed(ctx context.Context, input *exchangedto.MarkProcessedInput) error
}

type DefaultExchangeUsecase struct {
	BotRepo         domain.BotRepository
	Requesters      domain.RequesterResolver
	Ledger          domain.Ledger
	TransactionRepo domain.TransactionRepository
	RatesCache      domain.RatesCache
	Receipts        domain.ReceiptGenerator
	Notifier        domain.Notifier
	Metrics         *metrics.ExchangeMetrics

	WindowDuration time.Duration
	NotifyTimeout  time.Duration
	Now            func() time.Time

	notifications sync.WaitGroup
}

func NewDefaultExchangeUsecase(
	botRepo domain.BotRepository,
	requesters domain.RequesterResolver,
	ledger domain.Ledger,
	transactionRepo domain.TransactionRepository,
	ratesCache domain.RatesCache,
	receipts domain.ReceiptGenerator,
	notifier domain.Notifier,
	exchangeMetrics *metrics.ExchangeMetrics,
	windowDuration time.Duration,
) *DefaultExchangeUsecase {
	if windowDuration <= 0 {
		windowDuration = domain.DefaultWindowDuration
	}

	return &DefaultExchangeUsecase{
		BotRepo:         botRepo,
		Requesters:      requesters,
		Ledger:          ledger,
		TransactionRepo: transactionRepo,
		RatesCache:      ratesCache,
		Receipts:        receipts,
		Notifier:        notifier,
		Metrics:         exchangeMetrics,
		WindowDuration:  windowDuration,
		NotifyTimeout:   10 * time.Second,
		Now:             time.Now,
	}
}

// WaitNotifications blocks until every dispatched notification has finished.
func (uc *DefaultExchangeUsecase) WaitNotifications() {
	uc.notifications.Wait()
}
