package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLedger runs each admission in one database transaction. Counter
// rows are read with SELECT ... FOR UPDATE so concurrent admissions for the
// same destination bot or user counter queue behind each other.
type DefaultLedger struct {
	DB *gorm.DB
}

func NewDefaultLedger(db *gorm.DB) *DefaultLedger {
	return &DefaultLedger{DB: db}
}

func (l *DefaultLedger) RunInTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTx{db: tx})
	})
}

type gormLedgerTx struct {
	db *gorm.DB
}

func (t *gormLedgerTx) LockBot(ctx context.Context, currencyCode string) (*domain.Bot, error) {
	var botModel models.BotModel
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&botModel, "currency_code = ?", currencyCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBotNotFound
		}
		return nil, fmt.Errorf("lock bot %s: %w", currencyCode, err)
	}
	return mappers.ToDomainBot(&botModel), nil
}

// LockUserCounter creates the counter row on first use, then locks it.
func (t *gormLedgerTx) LockUserCounter(ctx context.Context, sourceCurrency, requesterID, destinationCurrency string) (*domain.UserCounter, error) {
	seed := models.UserCounterModel{
		ID:                  uuid.New().String(),
		SourceCurrency:      sourceCurrency,
		RequesterID:         requesterID,
		DestinationCurrency: destinationCurrency,
		Exchanged:           decimal.Zero,
	}
	if err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("init user counter: %w", err)
	}

	var counterModel models.UserCounterModel
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("source_currency = ? AND requester_id = ? AND destination_currency = ?",
			sourceCurrency, requesterID, destinationCurrency).
		First(&counterModel).Error
	if err != nil {
		return nil, fmt.Errorf("lock user counter: %w", err)
	}
	return mappers.ToDomainUserCounter(&counterModel), nil
}

func (t *gormLedgerTx) SaveBotWindow(ctx context.Context, currencyCode string, w domain.Window) error {
	anchor, total := mappers.WindowColumns(w)
	return t.db.WithContext(ctx).
		Model(&models.BotModel{}).
		Where("currency_code = ?", currencyCode).
		Updates(map[string]interface{}{
			"exchanged_today":        total,
			"first_transaction_time": anchor,
			"updated_at":             time.Now(),
		}).Error
}

func (t *gormLedgerTx) SaveUserCounter(ctx context.Context, counter *domain.UserCounter) error {
	counterModel := mappers.ToGORMUserCounter(counter)
	return t.db.WithContext(ctx).
		Model(&models.UserCounterModel{}).
		Where("id = ?", counterModel.ID).
		Updates(map[string]interface{}{
			"exchanged":              counterModel.Exchanged,
			"first_transaction_time": counterModel.FirstTransactionTime,
			"updated_at":             time.Now(),
		}).Error
}

func (t *gormLedgerTx) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	return t.db.WithContext(ctx).Create(mappers.ToGORMTransaction(transaction)).Error
}
