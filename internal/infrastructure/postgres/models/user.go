package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerifiedUserModel - пользователь, прошедший верификацию у бота-источника
type VerifiedUserModel struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	SourceCurrency string `gorm:"not null;uniqueIndex:idx_user_source_requester"`
	RequesterID    string `gorm:"not null;uniqueIndex:idx_user_source_requester"`
	VerifiedAt     time.Time
}

func (VerifiedUserModel) TableName() string {
	return "verified_users"
}

type UserCounterModel struct {
	ID                   string          `gorm:"primaryKey;type:uuid"`
	SourceCurrency       string          `gorm:"not null;uniqueIndex:idx_counter_key"`
	RequesterID          string          `gorm:"not null;uniqueIndex:idx_counter_key"`
	DestinationCurrency  string          `gorm:"not null;uniqueIndex:idx_counter_key"`
	Exchanged            decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	FirstTransactionTime *time.Time
	UpdatedAt            time.Time
}

func (UserCounterModel) TableName() string {
	return "user_counters"
}
