package storage

import (
	"context"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// SnapshotStore keeps round snapshots until they are claimed or expire.
type SnapshotStore interface {
	// SaveSnapshot stores the snapshot unless one is already live for the round.
	SaveSnapshot(ctx context.Context, snap *models.RoundSnapshot, ttl time.Duration) error
	// TakeSnapshot atomically reads and removes the snapshot for a round.
	TakeSnapshot(ctx context.Context, roundID string) (*models.RoundSnapshot, error)
}
