package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionEvent is handed to notifiers after an admission is committed.
type TransactionEvent struct {
	Requester           string          `json:"requester"`
	AmountSource        decimal.Decimal `json:"amount_source"`
	SourceCurrency      string          `json:"source_currency"`
	AmountTarget        decimal.Decimal `json:"amount_target"`
	DestinationCurrency string          `json:"destination_currency"`
	Receipt             string          `json:"receipt"`
	Timestamp           time.Time       `json:"timestamp"`
}

func NewTransactionEvent(t *Transaction) TransactionEvent {
	return TransactionEvent{
		Requester:           t.RequesterID,
		AmountSource:        t.AmountSource,
		SourceCurrency:      t.SourceCurrency,
		AmountTarget:        t.AmountTarget,
		DestinationCurrency: t.DestinationCurrency,
		Receipt:             t.Receipt,
		Timestamp:           t.CreatedAt,
	}
}

type Notifier interface {
	NotifyTransaction(ctx context.Context, event TransactionEvent) error
}

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}
