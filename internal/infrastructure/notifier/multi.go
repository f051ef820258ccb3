package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/metrics"
)

type Sink interface {
	domain.Notifier
	Name() string
}

// MultiNotifier delivers each event to every sink concurrently. A failing
// sink does not stop the others.
type MultiNotifier struct {
	sinks   []Sink
	metrics *metrics.ExchangeMetrics
}

func NewMultiNotifier(exchangeMetrics *metrics.ExchangeMetrics, sinks ...Sink) *MultiNotifier {
	return &MultiNotifier{sinks: sinks, metrics: exchangeMetrics}
}

func (m *MultiNotifier) Len() int {
	return len(m.sinks)
}

func (m *MultiNotifier) NotifyTransaction(ctx context.Context, event domain.TransactionEvent) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, sink := range m.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			if err := sink.NotifyTransaction(ctx, event); err != nil {
				slog.Warn("notifier sink failed", "sink", sink.Name(), "receipt", event.Receipt, "error", err)
				if m.metrics != nil {
					m.metrics.RecordNotificationError(sink.Name())
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(sink)
	}
	wg.Wait()

	return errors.Join(errs...)
}
