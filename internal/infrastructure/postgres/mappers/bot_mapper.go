package mappers

import (
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
)

func ToDomainBot(model *models.BotModel) *domain.Bot {
	return &domain.Bot{
		ID:           model.ID,
		Owner:        model.Owner,
		Name:         model.Name,
		CurrencyCode: model.CurrencyCode,
		ToDiscoin:    model.ToDiscoin,
		FromDiscoin:  model.FromDiscoin,
		LimitUser:    model.LimitUser,
		LimitGlobal:  model.LimitGlobal,
		Window:       ToDomainWindow(model.FirstTransactionTime, model.ExchangedToday),
		APIKey:       model.APIKey,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMBot(bot *domain.Bot) *models.BotModel {
	return &models.BotModel{
		ID:                   bot.ID,
		Owner:                bot.Owner,
		Name:                 bot.Name,
		CurrencyCode:         bot.CurrencyCode,
		ToDiscoin:            bot.ToDiscoin,
		FromDiscoin:          bot.FromDiscoin,
		LimitUser:            bot.LimitUser,
		LimitGlobal:          bot.LimitGlobal,
		ExchangedToday:       bot.Window.Total,
		FirstTransactionTime: anchorPtr(bot.Window.Anchor),
		APIKey:               bot.APIKey,
		CreatedAt:            bot.CreatedAt,
		UpdatedAt:            bot.UpdatedAt,
	}
}

func anchorPtr(anchor time.Time) *time.Time {
	if anchor.IsZero() {
		return nil
	}
	return &anchor
}
