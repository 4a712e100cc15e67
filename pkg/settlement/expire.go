package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// ExpirePending cancels every transaction still pending after maxAge and
// returns how many it canceled. Withdrawals are refunded. A failure on one
// transaction is logged and the sweep moves on.
func (s *Service) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	stuck, err := s.store.GetStuckTransactions(ctx, maxAge)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	if len(stuck) > 0 {
		s.logger.InfoContext(ctx, "expiring stale pix transactions", "count", len(stuck), "max_age", maxAge.String())
	}

	expired := 0
	for i := range stuck {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		tx := &stuck[i]
		err := s.cancel(ctx, tx)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, storage.ErrAlreadySettled):
			s.logger.InfoContext(ctx, "transaction settled before expiry", "transaction_id", tx.ProviderTxID)
		default:
			s.logger.ErrorContext(ctx, "failed to expire transaction", "transaction_id", tx.ProviderTxID, "user_id", tx.UserID, "error", err)
		}
	}

	return expired, nil
}
