package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// ProcessWebhook applies a normalized provider notification. It reports
// true when the transaction is settled after the call, whether by this call
// or an earlier one. Redelivered webhooks are therefore harmless.
func (s *Service) ProcessWebhook(ctx context.Context, event models.WebhookEvent) (bool, error) {
	log := s.logger.With("transaction_id", event.TransactionID, "webhook_status", event.Status)

	tx, err := s.store.GetTransaction(ctx, event.TransactionID)
	if errors.Is(err, storage.ErrPixTransactionNotFound) {
		log.WarnContext(ctx, "webhook for unknown transaction")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get pix transaction: %w", err)
	}

	if tx.Status.Terminal() {
		if tx.Status == models.PixCanceled && event.Status == models.WebhookPaid {
			log.WarnContext(ctx, "paid webhook for canceled transaction, needs manual reconciliation",
				"user_id", tx.UserID, "amount", tx.Amount.String(), "type", tx.Type)
		} else {
			log.InfoContext(ctx, "duplicate webhook ignored", "status", tx.Status)
		}
		return true, nil
	}

	switch event.Status {
	case models.WebhookPaid:
		if mismatch := webhookMismatch(tx, event); mismatch != "" {
			log.ErrorContext(ctx, "rejecting paid webhook", "reason", mismatch, "user_id", tx.UserID)
			return false, fmt.Errorf("%w: %s", ErrWebhookMismatch, mismatch)
		}
		err = s.complete(ctx, tx)
	case models.WebhookCanceled, models.WebhookExpired:
		err = s.cancel(ctx, tx)
	default:
		log.InfoContext(ctx, "ignoring webhook with non-terminal status")
		return false, nil
	}

	if errors.Is(err, storage.ErrAlreadySettled) {
		log.InfoContext(ctx, "transaction settled concurrently")
		return true, nil
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to settle transaction", "error", err)
		return false, err
	}
	return true, nil
}

func webhookMismatch(tx *models.PixTransaction, event models.WebhookEvent) string {
	if !event.Amount.IsZero() && !event.Amount.Equal(tx.Amount) {
		return fmt.Sprintf("amount %s differs from recorded %s", event.Amount, tx.Amount)
	}
	if event.UserID != "" && event.UserID != tx.UserID {
		return fmt.Sprintf("user %s differs from recorded user", event.UserID)
	}
	return ""
}

// complete moves a pending transaction to Complete. Deposits credit the
// wallet in the same write.
func (s *Service) complete(ctx context.Context, tx *models.PixTransaction) error {
	now := s.Now()
	if tx.Type == models.PixOut {
		return s.store.SettleTransaction(ctx, storage.SettlementGuard{ProviderTxID: tx.ProviderTxID, Status: models.PixComplete, At: now})
	}

	w, err := s.accounts.Credit(ctx, tx.UserID, tx.Amount, EntryPixIn,
		account.WithSettlement(tx.ProviderTxID, models.PixComplete, now),
		account.WithMetadata("provider_tx_id", tx.ProviderTxID),
	)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "pix deposit credited", "user_id", tx.UserID, "transaction_id", tx.ProviderTxID, "total_balance", w.Total().String())
	return nil
}

// cancel moves a pending transaction to Canceled. Withdrawals refund the
// reserved amount in the same write.
func (s *Service) cancel(ctx context.Context, tx *models.PixTransaction) error {
	now := s.Now()
	if tx.Type == models.PixIn {
		return s.store.SettleTransaction(ctx, storage.SettlementGuard{ProviderTxID: tx.ProviderTxID, Status: models.PixCanceled, At: now})
	}

	_, err := s.accounts.Credit(ctx, tx.UserID, tx.Amount, EntryPixOutRefund,
		account.ToWithdrawable(),
		account.WithSettlement(tx.ProviderTxID, models.PixCanceled, now),
		account.WithMetadata("provider_tx_id", tx.ProviderTxID),
		account.WithMetadata("withdrawal_id", tx.ID),
	)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "pix withdrawal refunded", "user_id", tx.UserID, "transaction_id", tx.ProviderTxID)
	return nil
}
