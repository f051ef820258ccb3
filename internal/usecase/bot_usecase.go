package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	botdto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/bot"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ratesFooter = "Note that certain transaction limits may exist. Details will be displayed when a transaction is approved."

type BotUsecase interface {
	CreateBot(ctx context.Context, input *botdto.CreateBotInput) (*botdto.BotOutput, error)
	UpdateRates(ctx context.Context, input *botdto.UpdateRatesInput) error
	GetBotByCurrency(ctx context.Context, currencyCode string) (*domain.Bot, error)
	Authenticate(ctx context.Context, apiKey string) (*domain.Bot, error)
	ListBots(ctx context.Context) ([]*domain.Bot, error)
	ShowRates(ctx context.Context) (string, error)
	VerifyRequester(ctx context.Context, sourceCurrency, requesterID string) error
}

type DefaultBotUsecase struct {
	BotRepo    domain.BotRepository
	Verifier   domain.RequesterVerifier
	RatesCache domain.RatesCache
	validate   *validator.Validate
}

func NewDefaultBotUsecase(botRepo domain.BotRepository, verifier domain.RequesterVerifier, ratesCache domain.RatesCache) *DefaultBotUsecase {
	return &DefaultBotUsecase{
		BotRepo:    botRepo,
		Verifier:   verifier,
		RatesCache: ratesCache,
		validate:   validator.New(),
	}
}

func (uc *DefaultBotUsecase) CreateBot(ctx context.Context, input *botdto.CreateBotInput) (*botdto.BotOutput, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid bot: %w", err)
	}
	if !domain.ValidRates(input.ToDiscoin, input.FromDiscoin) {
		return nil, domain.ErrInvalidRate
	}

	limitUser := input.LimitUser
	if !limitUser.IsPositive() {
		limitUser = decimal.NewFromInt(domain.DefaultLimitUser)
	}
	limitGlobal := input.LimitGlobal
	if !limitGlobal.IsPositive() {
		limitGlobal = decimal.NewFromInt(domain.DefaultLimitGlobal)
	}
	if !domain.FitsStorage(limitUser) || !domain.FitsStorage(limitGlobal) {
		return nil, fmt.Errorf("invalid limit: %w", domain.ErrInvalidAmount)
	}

	bot := &domain.Bot{
		ID:           uuid.New().String(),
		Owner:        input.Owner,
		Name:         input.Name,
		CurrencyCode: domain.NormalizeCurrency(input.CurrencyCode),
		ToDiscoin:    input.ToDiscoin,
		FromDiscoin:  input.FromDiscoin,
		LimitUser:    limitUser,
		LimitGlobal:  limitGlobal,
		Window:       domain.Window{Total: decimal.Zero},
		APIKey:       GenerateAPIKey(input.Owner),
		CreatedAt:    time.Now(),
	}

	if err := uc.BotRepo.CreateBot(ctx, bot); err != nil {
		if errors.Is(err, domain.ErrCurrencyTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create bot: %w", err)
	}

	slog.Info("bot registered", "owner", bot.Owner, "name", bot.Name, "currency", bot.CurrencyCode)

	return &botdto.BotOutput{
		ID:           bot.ID,
		Owner:        bot.Owner,
		Name:         bot.Name,
		CurrencyCode: bot.CurrencyCode,
		ToDiscoin:    bot.ToDiscoin,
		FromDiscoin:  bot.FromDiscoin,
		LimitUser:    bot.LimitUser,
		LimitGlobal:  bot.LimitGlobal,
		APIKey:       bot.APIKey,
	}, nil
}

// UpdateRates changes conversion rates only; the API key is left untouched.
func (uc *DefaultBotUsecase) UpdateRates(ctx context.Context, input *botdto.UpdateRatesInput) error {
	if err := uc.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid rates: %w", err)
	}
	if !domain.ValidRates(input.ToDiscoin, input.FromDiscoin) {
		return domain.ErrInvalidRate
	}

	code := domain.NormalizeCurrency(input.CurrencyCode)
	if err := uc.BotRepo.UpdateRates(ctx, code, input.ToDiscoin, input.FromDiscoin); err != nil {
		return err
	}
	if uc.RatesCache != nil {
		uc.RatesCache.Invalidate(ctx, code)
	}

	slog.Info("bot rates updated", "currency", code, "to_discoin", input.ToDiscoin.String(), "from_discoin", input.FromDiscoin.String())
	return nil
}

func (uc *DefaultBotUsecase) GetBotByCurrency(ctx context.Context, currencyCode string) (*domain.Bot, error) {
	return uc.BotRepo.GetBotByCurrency(ctx, domain.NormalizeCurrency(currencyCode))
}

func (uc *DefaultBotUsecase) Authenticate(ctx context.Context, apiKey string) (*domain.Bot, error) {
	if apiKey == "" {
		return nil, domain.ErrUnauthorized
	}
	bot, err := uc.BotRepo.GetBotByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, domain.ErrBotNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return bot, nil
}

func (uc *DefaultBotUsecase) ListBots(ctx context.Context) ([]*domain.Bot, error) {
	return uc.BotRepo.ListBots(ctx)
}

// ShowRates renders the public rates listing. API keys are never part of it.
func (uc *DefaultBotUsecase) ShowRates(ctx context.Context) (string, error) {
	bots, err := uc.BotRepo.ListBots(ctx)
	if err != nil {
		return "", fmt.Errorf("list bots: %w", err)
	}

	var b strings.Builder
	b.WriteString("Current exchange rates for Discoin follows:\n\n")
	for _, bot := range bots {
		fmt.Fprintf(&b, "%s: 1 %s => %s Discoin => %s\n", bot.Name, bot.CurrencyCode, bot.ToDiscoin, bot.FromDiscoin)
	}
	b.WriteString("\n")
	b.WriteString(ratesFooter)
	return b.String(), nil
}

// VerifyRequester marks a requester as verified with an existing source bot.
func (uc *DefaultBotUsecase) VerifyRequester(ctx context.Context, sourceCurrency, requesterID string) error {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return errors.New("empty requester id")
	}
	code := domain.NormalizeCurrency(sourceCurrency)
	if _, err := uc.BotRepo.GetBotByCurrency(ctx, code); err != nil {
		return err
	}
	if err := uc.Verifier.VerifyRequester(ctx, code, requesterID); err != nil {
		return fmt.Errorf("verify requester: %w", err)
	}

	slog.Info("requester verified", "source", code, "requester", requesterID)
	return nil
}

// GenerateAPIKey derives a key from a random uuid seed and the owner.
func GenerateAPIKey(owner string) string {
	sum := sha256.Sum256([]byte(uuid.New().String() + owner))
	return hex.EncodeToString(sum[:])
}
