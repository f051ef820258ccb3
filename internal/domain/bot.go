package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimitUser   = 2500
	DefaultLimitGlobal = 1000000
)

// Bot - зарегистрированный шлюз валюты
type Bot struct {
	ID           string
	Owner        string
	Name         string
	CurrencyCode string
	ToDiscoin    decimal.Decimal
	FromDiscoin  decimal.Decimal
	LimitUser    decimal.Decimal
	LimitGlobal  decimal.Decimal
	// Глобальное окно: ExchangedToday + FirstTransactionTime
	Window    Window
	APIKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rates is the read-only snapshot of a bot used for conversion.
type Rates struct {
	CurrencyCode string
	Name         string
	ToDiscoin    decimal.Decimal
	FromDiscoin  decimal.Decimal
	LimitUser    decimal.Decimal
	LimitGlobal  decimal.Decimal
}

func (b *Bot) Rates() Rates {
	return Rates{
		CurrencyCode: b.CurrencyCode,
		Name:         b.Name,
		ToDiscoin:    b.ToDiscoin,
		FromDiscoin:  b.FromDiscoin,
		LimitUser:    b.LimitUser,
		LimitGlobal:  b.LimitGlobal,
	}
}

// ValidRates requires both rates to be positive and storable without rounding.
func ValidRates(toDiscoin, fromDiscoin decimal.Decimal) bool {
	return toDiscoin.IsPositive() && fromDiscoin.IsPositive() &&
		FitsStorage(toDiscoin) && FitsStorage(fromDiscoin)
}
