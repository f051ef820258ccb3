package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultBotRepository struct {
	DB *gorm.DB
}

func NewDefaultBotRepository(db *gorm.DB) *DefaultBotRepository {
	return &DefaultBotRepository{DB: db}
}

func (r *DefaultBotRepository) CreateBot(ctx context.Context, bot *domain.Bot) error {
	botModel := mappers.ToGORMBot(bot)
	if err := r.DB.WithContext(ctx).Create(botModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCurrencyTaken
		}
		return err
	}
	return nil
}

func (r *DefaultBotRepository) GetBotByCurrency(ctx context.Context, currencyCode string) (*domain.Bot, error) {
	var botModel models.BotModel
	if err := r.DB.WithContext(ctx).First(&botModel, "currency_code = ?", currencyCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBotNotFound
		}
		return nil, fmt.Errorf("get bot %s: %w", currencyCode, err)
	}
	return mappers.ToDomainBot(&botModel), nil
}

func (r *DefaultBotRepository) GetBotByAPIKey(ctx context.Context, apiKey string) (*domain.Bot, error) {
	var botModel models.BotModel
	if err := r.DB.WithContext(ctx).First(&botModel, "api_key = ?", apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBotNotFound
		}
		return nil, fmt.Errorf("get bot by api key: %w", err)
	}
	return mappers.ToDomainBot(&botModel), nil
}

func (r *DefaultBotRepository) ListBots(ctx context.Context) ([]*domain.Bot, error) {
	var botModels []models.BotModel
	if err := r.DB.WithContext(ctx).Order("currency_code ASC").Find(&botModels).Error; err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}

	bots := make([]*domain.Bot, len(botModels))
	for i, botModel := range botModels {
		bots[i] = mappers.ToDomainBot(&botModel)
	}
	return bots, nil
}

// UpdateRates не трогает api_key и счетчики
func (r *DefaultBotRepository) UpdateRates(ctx context.Context, currencyCode string, toDiscoin, fromDiscoin decimal.Decimal) error {
	result := r.DB.WithContext(ctx).
		Model(&models.BotModel{}).
		Where("currency_code = ?", currencyCode).
		Updates(map[string]interface{}{
			"to_discoin":   toDiscoin,
			"from_discoin": fromDiscoin,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update rates %s: %w", currencyCode, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrBotNotFound
	}
	return nil
}

func (r *DefaultBotRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
