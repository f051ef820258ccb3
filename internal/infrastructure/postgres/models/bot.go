package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BotModel struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	Owner          string          `gorm:"not null;uniqueIndex:idx_bot_owner_name"`
	Name           string          `gorm:"not null;uniqueIndex:idx_bot_owner_name"`
	CurrencyCode   string          `gorm:"not null;uniqueIndex"`
	ToDiscoin      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	FromDiscoin    decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	LimitUser      decimal.Decimal `gorm:"type:numeric(30,10);not null;default:2500"`
	LimitGlobal    decimal.Decimal `gorm:"type:numeric(30,10);not null;default:1000000"`
	ExchangedToday decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	// NULL пока не было ни одной транзакции
	FirstTransactionTime *time.Time
	APIKey               string `gorm:"not null;uniqueIndex"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (BotModel) TableName() string {
	return "bots"
}
