package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BotRepository interface {
	CreateBot(ctx context.Context, bot *Bot) error
	GetBotByCurrency(ctx context.Context, currencyCode string) (*Bot, error)
	GetBotByAPIKey(ctx context.Context, apiKey string) (*Bot, error)
	ListBots(ctx context.Context) ([]*Bot, error)
	UpdateRates(ctx context.Context, currencyCode string, toDiscoin, fromDiscoin decimal.Decimal) error
}

// RequesterResolver turns a requester id presented by a source bot into a
// verified identity. Unknown requesters yield ErrVerifyRequired.
type RequesterResolver interface {
	ResolveRequester(ctx context.Context, sourceCurrency, requesterID string) (*Requester, error)
}

// RequesterVerifier records that a requester passed verification with a
// source bot. Verifying twice is not an error.
type RequesterVerifier interface {
	VerifyRequester(ctx context.Context, sourceCurrency, requesterID string) error
}

type TransactionRepository interface {
	GetTransaction(ctx context.Context, receipt string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)
	MarkProcessed(ctx context.Context, receipt string, at time.Time) error
}

// LedgerTx is the view of storage inside one atomic admission unit. Rows
// returned by the Lock methods stay locked until the unit ends.
type LedgerTx interface {
	LockBot(ctx context.Context, currencyCode string) (*Bot, error)
	LockUserCounter(ctx context.Context, sourceCurrency, requesterID, destinationCurrency string) (*UserCounter, error)
	SaveBotWindow(ctx context.Context, currencyCode string, w Window) error
	SaveUserCounter(ctx context.Context, counter *UserCounter) error
	CreateTransaction(ctx context.Context, t *Transaction) error
}

// Ledger runs fn as a single all-or-nothing unit. Any error returned by fn
// aborts the unit and nothing it wrote is kept.
type Ledger interface {
	RunInTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

type RatesCache interface {
	GetRates(ctx context.Context, currencyCode string) (*Rates, bool)
	SetRates(ctx context.Context, rates Rates)
	Invalidate(ctx context.Context, currencyCode string)
}

type ReceiptGenerator interface {
	NewReceipt() (string, error)
}
