package domain

import "github.com/shopspring/decimal"

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDeclined Outcome = "declined"
	OutcomeInvalid  Outcome = "error"
)

// Причины отказа и сообщения об ошибках входных данных
const (
	ReasonUserLimitExceeded   = "per-user limit exceeded"
	ReasonGlobalLimitExceeded = "total limit exceeded"

	MsgBadPost                = "bad post"
	MsgVerifyRequired         = "verify required"
	MsgAmountNaN              = "amount NaN"
	MsgInvalidAmount          = "invalid amount"
	MsgInvalidDestination     = "invalid destination currency"
	MsgInvalidTransactionType = "invalid type"
)

// Admission is the decision produced for one exchange request. Exactly one
// group of fields is meaningful, selected by Outcome.
type Admission struct {
	Outcome Outcome

	// approved
	Receipt      string
	LimitNow     decimal.Decimal
	ResultAmount decimal.Decimal
	Transaction  *Transaction

	// declined
	Reason string
	Limit  *decimal.Decimal

	// invalid input
	Message string
}

func Approved(t *Transaction, limitNow decimal.Decimal) *Admission {
	return &Admission{
		Outcome:      OutcomeApproved,
		Receipt:      t.Receipt,
		LimitNow:     limitNow,
		ResultAmount: t.AmountTarget,
		Transaction:  t,
	}
}

func Declined(reason string, limit *decimal.Decimal) *Admission {
	return &Admission{Outcome: OutcomeDeclined, Reason: reason, Limit: limit}
}

func InvalidInput(message string) *Admission {
	return &Admission{Outcome: OutcomeInvalid, Message: message}
}

func (a *Admission) IsApproved() bool {
	return a != nil && a.Outcome == OutcomeApproved
}
