package usecase

import (
	"context"

	"card-spendings/internal/domain"
)

// TransactionRepository defines the interface for fetching transaction data.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go TransactionRepository
type TransactionRepository interface {
	GetTransactions(ctx context.Context, path string) ([]domain.Transaction, error)
}
