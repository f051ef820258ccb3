package exchangedto

import "github.com/LavaJover/shvark-exchange-service/internal/domain"

type ListTransactionsOutput struct {
	Transactions []domain.TransactionView
}
