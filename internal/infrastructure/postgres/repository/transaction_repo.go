package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) GetTransaction(ctx context.Context, receipt string) (*domain.Transaction, error) {
	var transactionModel models.TransactionModel
	if err := r.DB.WithContext(ctx).First(&transactionModel, "receipt = ?", receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&transactionModel), nil
}

func (r *DefaultTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := r.DB.WithContext(ctx).Model(&models.TransactionModel{})

	if filter.DestinationCurrency != "" {
		query = query.Where("destination_currency = ?", filter.DestinationCurrency)
	}
	if filter.OnlyUnprocessed {
		query = query.Where("processed = ?", false)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var transactionModels []models.TransactionModel
	if err := query.Order("created_at ASC").Find(&transactionModels).Error; err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, transactionModel := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&transactionModel)
	}
	return transactions, nil
}

// MarkProcessed - единственное изменение транзакции после создания
func (r *DefaultTransactionRepository) MarkProcessed(ctx context.Context, receipt string, at time.Time) error {
	result := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("receipt = ? AND processed = ?", receipt, false).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": at,
		})
	return result.Error
}
