package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionNormal TransactionType = "normal"
	TransactionRefund TransactionType = "refund"
)

func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case "", TransactionNormal:
		return TransactionNormal, true
	case TransactionRefund:
		return TransactionRefund, true
	}
	return "", false
}

type Transaction struct {
	Receipt             string
	RequesterID         string
	SourceCurrency      string
	DestinationCurrency string
	Type                TransactionType
	AmountSource        decimal.Decimal
	AmountTarget        decimal.Decimal
	AmountDiscoin       decimal.Decimal
	CreatedAt           time.Time
	Processed           bool
	ProcessedAt         *time.Time
}

// TransactionView - публичная проекция транзакции, без внутренних сумм
type TransactionView struct {
	User      string  `json:"user"`
	Timestamp int64   `json:"timestamp"`
	Source    string  `json:"source"`
	Amount    float64 `json:"amount"`
	Receipt   string  `json:"receipt"`
}

func (t *Transaction) View() TransactionView {
	return TransactionView{
		User:      t.RequesterID,
		Timestamp: t.CreatedAt.Unix(),
		Source:    t.SourceCurrency,
		Amount:    t.AmountTarget.InexactFloat64(),
		Receipt:   t.Receipt,
	}
}

type TransactionFilter struct {
	DestinationCurrency string
	OnlyUnprocessed     bool
	Limit               int
}
