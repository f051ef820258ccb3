package exchange

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
)

// dispatchNotification hands the event to the notifier in the background.
// The admission is already committed; a failing notifier only gets logged.
func (uc *DefaultExchangeUsecase) dispatchNotification(event domain.TransactionEvent) {
	if uc.Notifier == nil {
		return
	}

	uc.notifications.Add(1)
	go func() {
		defer uc.notifications.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("transaction notifier panicked", "receipt", event.Receipt, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), uc.NotifyTimeout)
		defer cancel()

		if err := uc.Notifier.NotifyTransaction(ctx, event); err != nil {
			slog.Error("failed to notify transaction", "receipt", event.Receipt, "error", err.Error())
		}
	}()
}
