package storage

import (
	"context"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// TransactionReader defines the interface for reading PIX transactions.
type TransactionReader interface {
	// GetTransaction retrieves a PIX transaction by its provider transaction ID.
	GetTransaction(ctx context.Context, providerTxID string) (*models.PixTransaction, error)
	// GetStuckTransactions retrieves transactions that are still pending after maxAge.
	GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.PixTransaction, error)
	// ListTransactionsByUserID retrieves all PIX transactions for a user, most recent first.
	ListTransactionsByUserID(ctx context.Context, userID string) ([]models.PixTransaction, error)
}

// TransactionManager defines the interface for recording and settling PIX transactions.
type TransactionManager interface {
	// CreateTransaction records a new pending transaction.
	CreateTransaction(ctx context.Context, tx *models.PixTransaction) error
	// SettleTransaction applies the guard's transition on its own. It returns
	// ErrAlreadySettled if the transaction is no longer pending.
	SettleTransaction(ctx context.Context, guard SettlementGuard) error
}

// PixStore combines the reader and manager interfaces.
type PixStore interface {
	TransactionReader
	TransactionManager
}
