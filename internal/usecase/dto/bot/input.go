package botdto

import "github.com/shopspring/decimal"

type CreateBotInput struct {
	Owner        string          `validate:"required"`
	Name         string          `validate:"required"`
	CurrencyCode string          `validate:"required,alpha,min=2,max=8"`
	ToDiscoin    decimal.Decimal
	FromDiscoin  decimal.Decimal
	// Пустые лимиты заменяются значениями по умолчанию
	LimitUser   decimal.Decimal
	LimitGlobal decimal.Decimal
}

type UpdateRatesInput struct {
	CurrencyCode string          `validate:"required"`
	ToDiscoin    decimal.Decimal
	FromDiscoin  decimal.Decimal
}
