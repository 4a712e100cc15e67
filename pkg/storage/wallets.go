package storage

import (
	"context"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// WalletMutation is one atomic write against a wallet: the new balances, the
// ledger entry describing the change and, optionally, a PIX status transition
// that must commit together with them.
type WalletMutation struct {
	// Wallet carries the new balances. Its Version must be the version that
	// was read; the store increments it when the write commits.
	Wallet *models.Wallet
	Entry  *models.LedgerEntry
	// Settlement is nil for mutations that are not tied to a PIX transaction.
	Settlement *SettlementGuard
}

// WalletStore defines the interface for managing wallets.
type WalletStore interface {
	// GetWallet retrieves a user's wallet by their user ID.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// GetWalletByID retrieves a wallet by its own ID.
	GetWalletByID(ctx context.Context, walletID string) (*models.Wallet, error)
	// CreateWallet creates a new wallet, failing with ErrWalletExists if the user already has one.
	CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	// ApplyMutation writes the balances, the ledger entry and the optional
	// settlement transition as a single unit.
	ApplyMutation(ctx context.Context, m *WalletMutation) error
}
