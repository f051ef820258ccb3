package dto

import "github.com/LavaJover/shvark-exchange-service/internal/domain"

type ApprovedResponse struct {
	Status       string  `json:"status"`
	Receipt      string  `json:"receipt"`
	LimitNow     float64 `json:"limitNow"`
	ResultAmount float64 `json:"resultAmount"`
}

type DeclinedResponse struct {
	Status string   `json:"status"`
	Reason string   `json:"reason"`
	Limit  *float64 `json:"limit,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type TransactionsResponse []domain.TransactionView

func NewError(message string) ErrorResponse {
	return ErrorResponse{Status: string(domain.OutcomeInvalid), Message: message}
}
