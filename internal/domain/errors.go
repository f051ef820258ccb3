package domain

import "errors"

var (
	ErrBotNotFound         = errors.New("bot not found")
	ErrCurrencyTaken       = errors.New("currency code already registered")
	ErrInvalidRate         = errors.New("rates must be positive")
	ErrVerifyRequired      = errors.New("verify required")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotDestination      = errors.New("transaction is not destined to this bot")
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
)
