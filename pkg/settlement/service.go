// Package settlement runs the PIX deposit and withdrawal lifecycle: it
// submits them to the gateway, records them as pending and settles them from
// provider webhooks or the expiry sweep.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryPixIn        = "PIX_IN"
	EntryPixOut       = "PIX_OUT"
	EntryPixOutRefund = "PIX_OUT_REFUND"
)

// Accounts is the part of account.Service used for settlement.
type Accounts interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error)
	DebitWithdrawable(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error)
}

// Payer identifies the person paying a deposit charge.
type Payer struct {
	Name     string
	Email    string
	Document string
	Phone    string
}

// DepositReference is what the payer needs to complete a deposit.
type DepositReference struct {
	ProviderTxID   string          `json:"transactionId"`
	Amount         decimal.Decimal `json:"amount"`
	QRCode         string          `json:"qrCode"`
	QRCodeImageURL string          `json:"qrImage"`
}

// WithdrawalReference describes an accepted withdrawal.
type WithdrawalReference struct {
	ProviderTxID string           `json:"transactionId"`
	Amount       decimal.Decimal  `json:"amount"`
	Status       models.PixStatus `json:"status"`
	Wallet       *models.Wallet   `json:"wallet"`
}

// Options tune the persistence retries.
type Options struct {
	PersistAttempts int
	RetryInterval   time.Duration
}

// Service implements PIX settlement.
type Service struct {
	gateway  gateway.Gateway
	store    storage.PixStore
	accounts Accounts
	opts     Options
	logger   *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// New creates a Service.
func New(gw gateway.Gateway, store storage.PixStore, accounts Accounts, opts Options, logger *slog.Logger) *Service {
	if opts.PersistAttempts <= 0 {
		opts.PersistAttempts = 3
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway:  gw,
		store:    store,
		accounts: accounts,
		opts:     opts,
		logger:   logger.With("component", "settlement"),
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    func() string { return uuid.New().String() },
	}
}

// InitiateDeposit creates a charge at the provider and records it as pending
// before returning the QR payload. If the record cannot be written the QR
// payload is withheld, so the orphaned charge can never be paid.
func (s *Service) InitiateDeposit(ctx context.Context, userID string, amount decimal.Decimal, payer Payer) (*DepositReference, error) {
	if !amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if _, err := s.accounts.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	charge, err := s.gateway.CreateDeposit(ctx, gateway.DepositRequest{
		UserID:   userID,
		Amount:   amount,
		Name:     payer.Name,
		Email:    payer.Email,
		Document: payer.Document,
		Phone:    payer.Phone,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create pix deposit", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	now := s.Now()
	tx := &models.PixTransaction{
		ID:             s.NewID(),
		ProviderTxID:   charge.ProviderTxID,
		UserID:         userID,
		Type:           models.PixIn,
		Amount:         amount,
		Status:         models.PixPending,
		QRCode:         charge.QRCode,
		QRCodeImageURL: charge.QRCodeImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.persist(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "abandoning pix deposit that could not be recorded",
			"user_id", userID, "transaction_id", charge.ProviderTxID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "pix deposit initiated", "user_id", userID, "transaction_id", tx.ProviderTxID, "amount", amount.String())
	return &DepositReference{
		ProviderTxID:   tx.ProviderTxID,
		Amount:         amount,
		QRCode:         tx.QRCode,
		QRCodeImageURL: tx.QRCodeImageURL,
	}, nil
}

// InitiateWithdrawal reserves amount from the withdrawable balance and asks
// the provider to pay it out. The wallet is debited once, here. A provider
// failure refunds the reservation.
func (s *Service) InitiateWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, pixKey, pixKeyType string) (*WithdrawalReference, error) {
	if !amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if pixKey == "" {
		return nil, ErrInvalidPixKey
	}

	withdrawalID := s.NewID()
	wallet, err := s.accounts.DebitWithdrawable(ctx, userID, amount, EntryPixOut, account.WithMetadata("withdrawal_id", withdrawalID))
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateWithdrawal(ctx, gateway.WithdrawalRequest{
		UserID:     userID,
		Amount:     amount,
		PixKey:     pixKey,
		PixKeyType: pixKeyType,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create pix withdrawal, refunding", "user_id", userID, "withdrawal_id", withdrawalID, "error", err)
		if _, refundErr := s.accounts.Credit(ctx, userID, amount, EntryPixOutRefund,
			account.ToWithdrawable(), account.WithMetadata("withdrawal_id", withdrawalID)); refundErr != nil {
			s.logger.ErrorContext(ctx, "failed to refund withdrawal reservation",
				"user_id", userID, "withdrawal_id", withdrawalID, "amount", amount.String(), "error", refundErr)
			return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, errors.Join(err, refundErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	now := s.Now()
	tx := &models.PixTransaction{
		ID:           withdrawalID,
		ProviderTxID: order.ProviderTxID,
		UserID:       userID,
		Type:         models.PixOut,
		Amount:       amount,
		Status:       models.PixPending,
		PixKey:       pixKey,
		PixKeyType:   pixKeyType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.persist(ctx, tx); err != nil {
		// The payout is already at the provider, so the reservation stays.
		s.logger.ErrorContext(ctx, "pix withdrawal submitted but not recorded, needs manual reconciliation",
			"user_id", userID, "withdrawal_id", withdrawalID, "transaction_id", order.ProviderTxID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "pix withdrawal initiated", "user_id", userID, "transaction_id", tx.ProviderTxID, "amount", amount.String())
	return &WithdrawalReference{
		ProviderTxID: tx.ProviderTxID,
		Amount:       amount,
		Status:       tx.Status,
		Wallet:       wallet,
	}, nil
}

// ListTransactions returns the user's PIX transactions, most recent first.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]models.PixTransaction, error) {
	txs, err := s.store.ListTransactionsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pix transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) persist(ctx context.Context, tx *models.PixTransaction) error {
	op := func() error {
		err := s.store.CreateTransaction(ctx, tx)
		if errors.Is(err, storage.ErrPixTransactionExists) {
			return backoff.Permanent(err)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "failed to record pix transaction, retrying", "transaction_id", tx.ProviderTxID, "error", err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.PersistAttempts-1)), ctx))
}
