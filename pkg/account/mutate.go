package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/chris/pix-wallet-ledger/pkg/websockets"
	"github.com/shopspring/decimal"
)

// change is the outcome of applying an operation to a freshly read wallet.
type change struct {
	balances models.Balances
	amount   decimal.Decimal
	metadata map[string]string
}

// mutate runs load -> apply -> ApplyMutation until the version check passes.
// Errors from load and apply are final. Only version conflicts are retried,
// each time against a fresh read.
func (s *Service) mutate(
	ctx context.Context,
	entryType string,
	o options,
	load func(context.Context) (*models.Wallet, error),
	apply func(*models.Wallet) (*change, error),
) (*models.Wallet, error) {
	var (
		result   *models.Wallet
		entry    *models.LedgerEntry
		attempts int
	)

	op := func() error {
		attempts++

		w, err := load(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		c, err := apply(w)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !c.balances.NonNegative() {
			return backoff.Permanent(ErrInsufficientFunds)
		}

		now := s.Now()
		next := *w
		next.Balance = c.balances.Balance
		next.BalanceWithdrawal = c.balances.BalanceWithdrawal
		next.BalanceBonus = c.balances.BalanceBonus
		next.UpdatedAt = now

		e := &models.LedgerEntry{
			ID:           s.NewID(),
			WalletID:     w.ID,
			UserID:       w.UserID,
			Type:         entryType,
			Amount:       c.amount,
			BalanceAfter: next.Balance,
			GameRoundID:  o.roundID,
			Metadata:     mergeMetadata(c.metadata, o.metadata),
			CreatedAt:    now,
		}

		err = s.store.ApplyMutation(ctx, &storage.WalletMutation{Wallet: &next, Entry: e, Settlement: o.settlement})
		if errors.Is(err, storage.ErrVersionConflict) {
			s.logger.DebugContext(ctx, "wallet version conflict, retrying", "user_id", w.UserID, "attempt", attempts)
			return err
		}
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to apply wallet mutation: %w", err))
		}

		result, entry = &next, e
		return nil
	}

	if err := backoff.Retry(op, s.retryPolicy(ctx)); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			s.logger.WarnContext(ctx, "giving up on wallet mutation", "type", entryType, "attempts", attempts, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "wallet mutated",
		"user_id", result.UserID,
		"wallet_id", result.ID,
		"type", entryType,
		"amount", entry.Amount.String(),
		"entry_id", entry.ID,
	)
	s.publish(ctx, result, entry)
	return result, nil
}

func (s *Service) retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.RetryInterval
	b.MaxInterval = 50 * s.policy.RetryInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.policy.MaxAttempts-1)), ctx)
}

// publish is best-effort; a failed push never fails the mutation.
func (s *Service) publish(ctx context.Context, w *models.Wallet, e *models.LedgerEntry) {
	msg := websockets.Message{
		UserID: w.UserID,
		Type:   websockets.MessageTypeWalletUpdate,
		Payload: websockets.WalletUpdatePayload{
			UserID:            w.UserID,
			WalletID:          w.ID,
			EntryID:           e.ID,
			EntryType:         e.Type,
			Change:            e.Amount,
			Balance:           w.Balance,
			BalanceWithdrawal: w.BalanceWithdrawal,
			BalanceBonus:      w.BalanceBonus,
			TotalBalance:      w.Total(),
		},
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to publish wallet update", "user_id", w.UserID, "error", err)
	}
}

func mergeMetadata(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
