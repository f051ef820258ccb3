package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FlexString
	}{
		{"string", `{"user":"1234","amount":"10.5"}`, "10.5"},
		{"number", `{"user":1234,"amount":10.5}`, "10.5"},
		{"exponent", `{"user":1,"amount":1e3}`, "1e3"},
		{"non numeric text", `{"user":1,"amount":"abc"}`, "abc"},
		{"null", `{"user":1,"amount":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req TransactionRequest
			require.NoError(t, json.Unmarshal([]byte(tt.in), &req))
			assert.Equal(t, tt.want, req.Amount)
		})
	}
}

func TestFlexString_RejectsObjects(t *testing.T) {
	var req TransactionRequest
	assert.Error(t, json.Unmarshal([]byte(`{"amount":{"x":1}}`), &req))
}
