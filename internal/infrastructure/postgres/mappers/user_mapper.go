package mappers

import (
	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
)

func ToDomainRequester(model *models.VerifiedUserModel) *domain.Requester {
	return &domain.Requester{
		ID:             model.ID,
		SourceCurrency: model.SourceCurrency,
		RequesterID:    model.RequesterID,
		VerifiedAt:     model.VerifiedAt,
	}
}

func ToDomainUserCounter(model *models.UserCounterModel) *domain.UserCounter {
	return &domain.UserCounter{
		ID:                  model.ID,
		SourceCurrency:      model.SourceCurrency,
		RequesterID:         model.RequesterID,
		DestinationCurrency: model.DestinationCurrency,
		Window:              ToDomainWindow(model.FirstTransactionTime, model.Exchanged),
	}
}

func ToGORMUserCounter(counter *domain.UserCounter) *models.UserCounterModel {
	anchor, total := WindowColumns(counter.Window)
	return &models.UserCounterModel{
		ID:                   counter.ID,
		SourceCurrency:       counter.SourceCurrency,
		RequesterID:          counter.RequesterID,
		DestinationCurrency:  counter.DestinationCurrency,
		Exchanged:            total,
		FirstTransactionTime: anchor,
	}
}
