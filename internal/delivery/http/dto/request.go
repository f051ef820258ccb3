package dto

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// FlexString accepts a JSON string or number and keeps its literal text.
// Bots send user ids and amounts either way.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = FlexString(num.String())
	return nil
}

type TransactionRequest struct {
	User       FlexString `json:"user" validate:"required"`
	Amount     FlexString `json:"amount" validate:"required"`
	ExchangeTo string     `json:"exchangeTo" validate:"required"`
	Type       string     `json:"type"`
}
