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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUserRepository reads requesters verified by the external
// verification flow.
type DefaultUserRepository struct {
	DB *gorm.DB
}

func NewDefaultUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{DB: db}
}

func (r *DefaultUserRepository) ResolveRequester(ctx context.Context, sourceCurrency, requesterID string) (*domain.Requester, error) {
	var userModel models.VerifiedUserModel
	err := r.DB.WithContext(ctx).
		Where("source_currency = ? AND requester_id = ?", sourceCurrency, requesterID).
		First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVerifyRequired
		}
		return nil, fmt.Errorf("resolve requester: %w", err)
	}
	return mappers.ToDomainRequester(&userModel), nil
}

// VerifyRequester is the write side used by the verification flow.
func (r *DefaultUserRepository) VerifyRequester(ctx context.Context, sourceCurrency, requesterID string) error {
	userModel := models.VerifiedUserModel{
		ID:             uuid.New().String(),
		SourceCurrency: sourceCurrency,
		RequesterID:    requesterID,
		VerifiedAt:     time.Now(),
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userModel).Error
}
