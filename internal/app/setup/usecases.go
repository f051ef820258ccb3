package setup

import (
	"github.com/LavaJover/shvark-exchange-service/internal/usecase"
	"github.com/LavaJover/shvark-exchange-service/internal/usecase/exchange"
)

type UseCases struct {
	BotUsecase      *usecase.DefaultBotUsecase
	ExchangeUsecase *exchange.DefaultExchangeUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	repos := deps.Repositories

	botUsecase := usecase.NewDefaultBotUsecase(repos.BotRepo, repos.Verifier, deps.RatesCache)

	exchangeUsecase := exchange.NewDefaultExchangeUsecase(
		repos.BotRepo,
		repos.Requesters,
		repos.Ledger,
		repos.TransactionRepo,
		deps.RatesCache,
		deps.Receipts,
		deps.Notifier,
		deps.Metrics,
		deps.Config.Exchange.Window,
	)
	if deps.Config.Exchange.NotifyTimeout > 0 {
		exchangeUsecase.NotifyTimeout = deps.Config.Exchange.NotifyTimeout
	}

	return &UseCases{
		BotUsecase:      botUsecase,
		ExchangeUsecase: exchangeUsecase,
	}
}
