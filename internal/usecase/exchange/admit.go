package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
	"github.com/shopspring/decimal"
)

var (
	// errDeclined aborts the ledger unit after a limit check failed.
	errDeclined = errors.New("admission declined")
	// errRejected aborts it when the converted amount cannot be stored.
	errRejected = errors.New("admission rejected")
)

// Admit decides one exchange request. Input problems and limit violations are
// reported through the returned Admission; a non-nil error means storage
// could not be reached and nothing was committed.
func (uc *DefaultExchangeUsecase) Admit(ctx context.Context, input *exchangedto.AdmitInput) (*domain.Admission, error) {
	start := time.Now()
	admission, err := uc.admit(ctx, input)
	uc.recordAdmissionMetrics(input, admission, err, time.Since(start))
	return admission, err
}

func (uc *DefaultExchangeUsecase) admit(ctx context.Context, input *exchangedto.AdmitInput) (*domain.Admission, error) {
	if input == nil || input.SourceBot == nil {
		return nil, domain.ErrUnauthorized
	}
	if input.RequesterID == "" || input.Amount == "" || input.ExchangeTo == "" {
		return domain.InvalidInput(domain.MsgBadPost), nil
	}
	source := input.SourceBot

	// ===== ВАЛИДАЦИЯ =====
	if _, err := uc.Requesters.ResolveRequester(ctx, source.CurrencyCode, input.RequesterID); err != nil {
		if errors.Is(err, domain.ErrVerifyRequired) {
			return domain.InvalidInput(domain.MsgVerifyRequired), nil
		}
		return nil, uc.infrastructureError("resolve_requester", err)
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrAmountNaN) {
			return domain.InvalidInput(domain.MsgAmountNaN), nil
		}
		return domain.InvalidInput(domain.MsgInvalidAmount), nil
	}
	amountDiscoin := domain.RoundAmount(amount.Mul(source.ToDiscoin))
	if amountDiscoin.IsZero() {
		return domain.InvalidInput(domain.MsgInvalidAmount), nil
	}

	destination := domain.NormalizeCurrency(input.ExchangeTo)
	rates, err := uc.lookupRates(ctx, destination)
	if err != nil {
		if errors.Is(err, domain.ErrBotNotFound) {
			return domain.InvalidInput(domain.MsgInvalidDestination), nil
		}
		return nil, uc.infrastructureError("lookup_destination", err)
	}

	txType, ok := domain.ParseTransactionType(input.Type)
	if !ok {
		return domain.InvalidInput(domain.MsgInvalidTransactionType), nil
	}

	// Лимиты бота после регистрации не меняются: сумма больше пользовательского
	// лимита отклоняется по снимку из кэша, без блокировки строки бота
	if amountDiscoin.GreaterThan(rates.LimitUser) {
		admission := domain.Declined(domain.ReasonUserLimitExceeded, limitRef(rates.LimitUser))
		uc.logDecline(input, destination, amountDiscoin, admission)
		return admission, nil
	}

	receipt, err := uc.Receipts.NewReceipt()
	if err != nil {
		return nil, uc.infrastructureError("receipt", err)
	}

	// ===== КВОТЫ + ЗАПИСЬ (атомарно) =====
	now := uc.Now()

	var admission *domain.Admission
	err = uc.Ledger.RunInTx(ctx, func(tx domain.LedgerTx) error {
		target, err := tx.LockBot(ctx, destination)
		if err != nil {
			return err
		}
		counter, err := tx.LockUserCounter(ctx, source.CurrencyCode, input.RequesterID, destination)
		if err != nil {
			return err
		}

		userWindow, err := counter.Window.Advance(amountDiscoin, target.LimitUser, now, uc.WindowDuration)
		if err != nil {
			admission = domain.Declined(domain.ReasonUserLimitExceeded, limitRef(target.LimitUser))
			return errDeclined
		}
		botWindow, err := target.Window.Advance(amountDiscoin, target.LimitGlobal, now, uc.WindowDuration)
		if err != nil {
			admission = domain.Declined(domain.ReasonGlobalLimitExceeded, limitRef(target.LimitGlobal))
			return errDeclined
		}

		amountTarget := domain.RoundAmount(amount.Mul(target.FromDiscoin))
		if amountTarget.IsZero() || !domain.FitsStorage(amountTarget) {
			admission = domain.InvalidInput(domain.MsgInvalidAmount)
			return errRejected
		}

		transaction := &domain.Transaction{
			Receipt:             receipt,
			RequesterID:         input.RequesterID,
			SourceCurrency:      source.CurrencyCode,
			DestinationCurrency: destination,
			Type:                txType,
			AmountSource:        amount,
			AmountTarget:        amountTarget,
			AmountDiscoin:       amountDiscoin,
			CreatedAt:           now,
		}

		counter.Window = userWindow
		if err := tx.SaveUserCounter(ctx, counter); err != nil {
			return fmt.Errorf("save user counter: %w", err)
		}
		if err := tx.SaveBotWindow(ctx, destination, botWindow); err != nil {
			return fmt.Errorf("save bot window: %w", err)
		}
		if err := tx.CreateTransaction(ctx, transaction); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		admission = domain.Approved(transaction, target.LimitUser.Sub(userWindow.Total))
		return nil
	})

	switch {
	case errors.Is(err, errDeclined):
		uc.logDecline(input, destination, amountDiscoin, admission)
		return admission, nil
	case errors.Is(err, errRejected):
		return admission, nil
	case errors.Is(err, domain.ErrBotNotFound):
		// бот удален между проверкой и блокировкой
		if uc.RatesCache != nil {
			uc.RatesCache.Invalidate(ctx, destination)
		}
		return domain.InvalidInput(domain.MsgInvalidDestination), nil
	case err != nil:
		return nil, uc.infrastructureError("commit", err)
	}

	slog.Info("exchange approved",
		"receipt", admission.Receipt,
		"source", source.CurrencyCode,
		"destination", destination,
		"requester", input.RequesterID,
		"amount_source", amount.String(),
		"amount_target", admission.ResultAmount.String(),
	)

	uc.dispatchNotification(domain.NewTransactionEvent(admission.Transaction))

	return admission, nil
}

func (uc *DefaultExchangeUsecase) logDecline(input *exchangedto.AdmitInput, destination string, amountDiscoin decimal.Decimal, admission *domain.Admission) {
	slog.Info("exchange declined",
		"source", input.SourceBot.CurrencyCode,
		"destination", destination,
		"requester", input.RequesterID,
		"amount_discoin", amountDiscoin.String(),
		"reason", admission.Reason,
	)
}

// lookupRates resolves a bot's rate snapshot, preferring the cache.
func (uc *DefaultExchangeUsecase) lookupRates(ctx context.Context, currencyCode string) (*domain.Rates, error) {
	if uc.RatesCache != nil {
		if rates, ok := uc.RatesCache.GetRates(ctx, currencyCode); ok {
			return rates, nil
		}
	}

	bot, err := uc.BotRepo.GetBotByCurrency(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	rates := bot.Rates()
	if uc.RatesCache != nil {
		uc.RatesCache.SetRates(ctx, rates)
	}
	return &rates, nil
}

func (uc *DefaultExchangeUsecase) infrastructureError(stage string, err error) error {
	slog.Error("exchange infrastructure failure", "stage", stage, "error", err)
	if uc.Metrics != nil {
		uc.Metrics.RecordInfrastructureError(stage)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrLedgerUnavailable, stage, err)
}

func limitRef(limit decimal.Decimal) *decimal.Decimal {
	return &limit
}
