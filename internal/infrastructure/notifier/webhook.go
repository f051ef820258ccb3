package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/goccy/go-json"
)

const (
	embedTitle  = ":new: New transaction!"
	embedColour = 7506394
	timeLayout  = "2006-01-02 15:04:05 MST"
)

// WebhookNotifier posts a human-readable embed for every transaction.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (n *WebhookNotifier) Name() string {
	return "webhook"
}

func BuildTransactionEmbed(event domain.TransactionEvent) Embed {
	return Embed{
		Title:  embedTitle,
		Colour: embedColour,
		Fields: []EmbedField{
			{Name: "User", Value: event.Requester, Inline: true},
			{
				Name: "Exchange",
				Value: fmt.Sprintf("%s %s => %s %s",
					event.AmountSource, event.SourceCurrency,
					event.AmountTarget, event.DestinationCurrency),
				Inline: true,
			},
			{Name: "Receipt", Value: event.Receipt},
		},
		Footer: &EmbedFooter{Text: "Sent " + event.Timestamp.UTC().Format(timeLayout)},
	}
}

func (n *WebhookNotifier) NotifyTransaction(ctx context.Context, event domain.TransactionEvent) error {
	body, err := json.Marshal(WebhookPayload{Embeds: []Embed{BuildTransactionEmbed(event)}})
	if err != nil {
		return fmt.Errorf("marshal webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
