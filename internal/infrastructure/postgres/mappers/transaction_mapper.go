package mappers

import (
	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		Receipt:             model.Receipt,
		RequesterID:         model.RequesterID,
		SourceCurrency:      model.SourceCurrency,
		DestinationCurrency: model.DestinationCurrency,
		Type:                domain.TransactionType(model.Type),
		AmountSource:        model.AmountSource,
		AmountTarget:        model.AmountTarget,
		AmountDiscoin:       model.AmountDiscoin,
		CreatedAt:           model.CreatedAt,
		Processed:           model.Processed,
		ProcessedAt:         model.ProcessedAt,
	}
}

func ToGORMTransaction(t *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		Receipt:             t.Receipt,
		RequesterID:         t.RequesterID,
		SourceCurrency:      t.SourceCurrency,
		DestinationCurrency: t.DestinationCurrency,
		Type:                string(t.Type),
		AmountSource:        t.AmountSource,
		AmountTarget:        t.AmountTarget,
		AmountDiscoin:       t.AmountDiscoin,
		Processed:           t.Processed,
		ProcessedAt:         t.ProcessedAt,
		CreatedAt:           t.CreatedAt,
	}
}
