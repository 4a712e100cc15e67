// Package rounds captures wallet balances at the start of a game round and
// restores them when the round is rolled back.
package rounds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// EntryRoundRestore tags the ledger entry written by Restore.
const EntryRoundRestore = "round_restore"

// DefaultTTL is how long an unclaimed snapshot stays restorable.
const DefaultTTL = 6 * time.Hour

var (
	ErrInvalidRound     = errors.New("round ID is required")
	ErrSnapshotNotFound = errors.New("no snapshot for round")
	ErrSnapshotExists   = errors.New("snapshot already taken for round")
)

// Accounts is the part of account.Service used by rounds.
type Accounts interface {
	GetWalletByID(ctx context.Context, walletID string) (*models.Wallet, error)
	Overwrite(ctx context.Context, walletID string, balances models.Balances, entryType string, opts ...account.Option) (*models.Wallet, error)
}

type Service struct {
	accounts  Accounts
	snapshots storage.SnapshotStore
	ttl       time.Duration
	logger    *slog.Logger

	Now func() time.Time
}

func New(accounts Accounts, snapshots storage.SnapshotStore, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:  accounts,
		snapshots: snapshots,
		ttl:       ttl,
		logger:    logger.With("component", "rounds"),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Begin stores the wallet's current sub-balances under roundID.
func (s *Service) Begin(ctx context.Context, walletID, roundID string) (*models.RoundSnapshot, error) {
	if roundID == "" {
		return nil, ErrInvalidRound
	}

	w, err := s.accounts.GetWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	snap := &models.RoundSnapshot{
		RoundID:           roundID,
		WalletID:          w.ID,
		UserID:            w.UserID,
		Balance:           w.Balance,
		BalanceWithdrawal: w.BalanceWithdrawal,
		BalanceBonus:      w.BalanceBonus,
		CreatedAt:         s.Now(),
	}
	if err := s.snapshots.SaveSnapshot(ctx, snap, s.ttl); err != nil {
		if errors.Is(err, storage.ErrSnapshotExists) {
			return nil, fmt.Errorf("round %s: %w", roundID, ErrSnapshotExists)
		}
		return nil, fmt.Errorf("failed to save round snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "round snapshot taken", "round_id", roundID, "wallet_id", w.ID, "total_balance", w.Total().String())
	return snap, nil
}

// Restore writes the snapshot of roundID back to its wallet. A snapshot can
// be restored once. If the write fails the snapshot is put back so the
// restore can be retried.
func (s *Service) Restore(ctx context.Context, roundID string) (*models.Wallet, error) {
	if roundID == "" {
		return nil, ErrInvalidRound
	}

	snap, err := s.snapshots.TakeSnapshot(ctx, roundID)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("round %s: %w", roundID, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim round snapshot: %w", err)
	}

	w, err := s.accounts.Overwrite(ctx, snap.WalletID, snap.Balances(), EntryRoundRestore,
		account.WithRoundID(roundID),
		account.WithMetadata("round_id", roundID),
	)
	if err != nil {
		if putErr := s.snapshots.SaveSnapshot(ctx, snap, s.ttl); putErr != nil {
			s.logger.ErrorContext(ctx, "failed to put back round snapshot", "round_id", roundID, "error", putErr)
		}
		return nil, fmt.Errorf("failed to restore round %s: %w", roundID, err)
	}

	s.logger.InfoContext(ctx, "round restored", "round_id", roundID, "wallet_id", w.ID, "total_balance", w.Total().String())
	return w, nil
}
