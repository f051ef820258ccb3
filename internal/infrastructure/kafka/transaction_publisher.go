package publisher

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/goccy/go-json"
)

// TransactionPublisher publishes admitted transactions to a kafka topic,
// keyed by destination currency so one bot's events stay ordered.
type TransactionPublisher struct {
	publisher domain.PublisherPort
	topic     string
}

func NewTransactionPublisher(publisher domain.PublisherPort, topic string) *TransactionPublisher {
	return &TransactionPublisher{publisher: publisher, topic: topic}
}

func (p *TransactionPublisher) Name() string {
	return "kafka"
}

func (p *TransactionPublisher) NotifyTransaction(ctx context.Context, event domain.TransactionEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	if err := p.publisher.Publish(ctx, p.topic, domain.Message{
		Key:   []byte(event.DestinationCurrency),
		Value: v,
	}); err != nil {
		return fmt.Errorf("publish transaction %s: %w", event.Receipt, err)
	}
	return nil
}
