package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Суммы, курсы и лимиты хранятся как NUMERIC(30,10)
const (
	AmountScale         = 10
	AmountIntegerDigits = 20

	maxAmountText = 64
)

var (
	ErrAmountNaN     = errors.New("amount is not a number")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ParseAmount accepts the textual amount sent by a bot. ErrAmountNaN means
// the text is not a finite number; ErrInvalidAmount means it is not a
// positive value representable at AmountScale.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, ErrAmountNaN
	}
	if len(raw) > maxAmountText {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrAmountNaN
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !FitsStorage(amount) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount.Truncate(AmountScale), nil
}

// FitsStorage reports whether d is stored exactly: at most AmountScale
// fractional digits and AmountIntegerDigits integer digits. Exponents are
// checked before any rescaling so hostile exponents stay cheap.
func FitsStorage(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxAmountText || exp > AmountIntegerDigits {
		return false
	}
	if int64(d.NumDigits())+exp > AmountIntegerDigits {
		return false
	}
	return exp >= -AmountScale || d.Equal(d.Truncate(AmountScale))
}

// RoundAmount brings a computed value to the storage scale.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
