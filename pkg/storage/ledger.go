package storage

import (
	"context"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListLedgerEntries retrieves a wallet's ledger entries, most recent first.
	// A limit of zero or less returns every entry.
	ListLedgerEntries(ctx context.Context, walletID string, limit int32) ([]models.LedgerEntry, error)
}
