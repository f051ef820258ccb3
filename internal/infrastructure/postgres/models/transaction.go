package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionModel struct {
	Receipt             string          `gorm:"primaryKey"`
	RequesterID         string          `gorm:"not null;index"`
	SourceCurrency      string          `gorm:"not null"`
	DestinationCurrency string          `gorm:"not null;index:idx_tx_destination_processed"`
	Type                string          `gorm:"not null;default:normal"`
	AmountSource        decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AmountTarget        decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AmountDiscoin       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Processed           bool            `gorm:"not null;default:false;index:idx_tx_destination_processed"`
	ProcessedAt         *time.Time
	CreatedAt           time.Time `gorm:"index:idx_tx_created_at"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
