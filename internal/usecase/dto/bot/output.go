package botdto

import "github.com/shopspring/decimal"

type BotOutput struct {
	ID           string
	Owner        string
	Name         string
	CurrencyCode string
	ToDiscoin    decimal.Decimal
	FromDiscoin  decimal.Decimal
	LimitUser    decimal.Decimal
	LimitGlobal  decimal.Decimal
	// Выдается только при создании
	APIKey string
}
