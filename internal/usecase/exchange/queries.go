package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
)

const defaultListLimit = 100

// GetTransaction returns nil without an error for an unknown receipt.
func (uc *DefaultExchangeUsecase) GetTransaction(ctx context.Context, receipt string) (*domain.Transaction, error) {
	if receipt == "" {
		return nil, nil
	}
	transaction, err := uc.TransactionRepo.GetTransaction(ctx, receipt)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return transaction, nil
}

func (uc *DefaultExchangeUsecase) ListTransactions(ctx context.Context, input *exchangedto.ListTransactionsInput) (*exchangedto.ListTransactionsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	transactions, err := uc.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{
		DestinationCurrency: domain.NormalizeCurrency(input.DestinationCurrency),
		OnlyUnprocessed:     input.OnlyUnprocessed,
		Limit:               limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	views := make([]domain.TransactionView, len(transactions))
	for i, transaction := range transactions {
		views[i] = transaction.View()
	}

	return &exchangedto.ListTransactionsOutput{Transactions: views}, nil
}

// MarkProcessed records downstream settlement. Only the destination bot may
// settle a transaction; marking an already processed one is a no-op.
func (uc *DefaultExchangeUsecase) MarkProcessed(ctx context.Context, input *exchangedto.MarkProcessedInput) error {
	transaction, err := uc.GetTransaction(ctx, input.Receipt)
	if err != nil {
		return err
	}
	if transaction == nil {
		return domain.ErrTransactionNotFound
	}
	if transaction.DestinationCurrency != domain.NormalizeCurrency(input.DestinationCurrency) {
		return domain.ErrNotDestination
	}
	if transaction.Processed {
		return nil
	}

	if err := uc.TransactionRepo.MarkProcessed(ctx, input.Receipt, uc.Now()); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}
