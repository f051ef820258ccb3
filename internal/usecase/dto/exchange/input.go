package exchangedto

import "github.com/LavaJover/shvark-exchange-service/internal/domain"

type AdmitInput struct {
	// Бот-источник, уже аутентифицированный по API ключу
	SourceBot   *domain.Bot
	RequesterID string
	// Сумма в валюте источника, как прислал бот
	Amount     string
	ExchangeTo string
	Type       string
}

type ListTransactionsInput struct {
	DestinationCurrency string
	OnlyUnprocessed     bool
	Limit               int
}

type MarkProcessedInput struct {
	Receipt             string
	DestinationCurrency string
}
