// Package account owns every balance change of a wallet. Each change is
// written together with its ledger entry and guarded by the wallet version.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/chris/pix-wallet-ledger/pkg/websockets"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the business rules applied to credits and the write retry budget.
type Policy struct {
	// BalanceShare is the fraction of a split credit that goes to Balance.
	// The remainder goes to BalanceWithdrawal.
	BalanceShare    decimal.Decimal
	DefaultCurrency string
	// MaxAttempts bounds the read-modify-write cycles of a single mutation.
	MaxAttempts   int
	RetryInterval time.Duration
}

// DefaultPolicy splits credits 20/80 and retries a conflicting write up to five times.
func DefaultPolicy() Policy {
	return Policy{
		BalanceShare:    decimal.RequireFromString("0.2"),
		DefaultCurrency: models.DefaultCurrency,
		MaxAttempts:     5,
		RetryInterval:   10 * time.Millisecond,
	}
}

// Service implements wallet accounting on top of a storage.LedgerStore.
type Service struct {
	store     storage.LedgerStore
	publisher websockets.Publisher
	policy    Policy
	logger    *slog.Logger

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

// New creates a Service. A nil publisher disables balance pushes.
func New(store storage.LedgerStore, publisher websockets.Publisher, policy Policy, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = &websockets.NoOpPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.DefaultCurrency == "" {
		policy.DefaultCurrency = models.DefaultCurrency
	}
	if policy.RetryInterval <= 0 {
		policy.RetryInterval = 10 * time.Millisecond
	}
	return &Service{
		store:     store,
		publisher: publisher,
		policy:    policy,
		logger:    logger.With("component", "account"),
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     func() string { return uuid.New().String() },
	}
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
// Concurrent first calls for the same user all return the same wallet.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}

	w, err := s.store.GetWallet(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, storage.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	now := s.Now()
	created, err := s.store.CreateWallet(ctx, &models.Wallet{
		ID:                s.NewID(),
		UserID:            userID,
		Currency:          s.policy.DefaultCurrency,
		Balance:           decimal.Zero,
		BalanceWithdrawal: decimal.Zero,
		BalanceBonus:      decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if errors.Is(err, storage.ErrWalletExists) {
		s.logger.DebugContext(ctx, "lost wallet creation race, re-fetching", "user_id", userID)
		w, err = s.store.GetWallet(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet after concurrent create: %w", err)
		}
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.logger.InfoContext(ctx, "wallet created", "user_id", userID, "wallet_id", created.ID)
	return created, nil
}

// GetWallet returns the user's wallet without creating it.
func (s *Service) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	w, err := s.store.GetWallet(ctx, userID)
	if errors.Is(err, storage.ErrWalletNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrWalletNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// GetWalletByID returns a wallet by its own ID.
func (s *Service) GetWalletByID(ctx context.Context, walletID string) (*models.Wallet, error) {
	w, err := s.store.GetWalletByID(ctx, walletID)
	if errors.Is(err, storage.ErrWalletNotFound) {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// GetLedger returns the wallet's ledger entries, newest first. A limit of
// zero or less returns all of them.
func (s *Service) GetLedger(ctx context.Context, walletID string, limit int32) ([]models.LedgerEntry, error) {
	entries, err := s.store.ListLedgerEntries(ctx, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// Credit adds amount to the user's wallet, creating the wallet if needed.
// Without options the amount is split between Balance and BalanceWithdrawal
// according to the policy.
func (s *Service) Credit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...Option) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if userID == "" {
		return nil, ErrInvalidUser
	}
	o := buildOptions(opts)

	load := func(ctx context.Context) (*models.Wallet, error) {
		return s.GetOrCreate(ctx, userID)
	}
	return s.mutate(ctx, entryType, o, load, func(w *models.Wallet) (*change, error) {
		b := w.Balances()
		meta := make(map[string]string, 3)
		switch o.target {
		case targetBonus:
			b.BalanceBonus = b.BalanceBonus.Add(amount)
			meta["bonus"] = amount.String()
		case targetWithdrawable:
			b.BalanceWithdrawal = b.BalanceWithdrawal.Add(amount)
			meta["withdraw"] = amount.String()
		default:
			main := amount.Mul(s.policy.BalanceShare).Round(2)
			withdraw := amount.Sub(main)
			b.Balance = b.Balance.Add(main)
			b.BalanceWithdrawal = b.BalanceWithdrawal.Add(withdraw)
			meta["split"] = s.policy.BalanceShare.String()
			meta["main"] = main.String()
			meta["withdraw"] = withdraw.String()
		}
		return &change{balances: b, amount: amount, metadata: meta}, nil
	})
}

// Debit removes amount from the user's wallet, drawing from the bonus
// balance first, then Balance, then BalanceWithdrawal. It never creates a
// wallet and never leaves a sub-balance negative.
func (s *Service) Debit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...Option) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	return s.mutate(ctx, entryType, buildOptions(opts), s.existingWallet(userID), func(w *models.Wallet) (*change, error) {
		if w.Total().LessThan(amount) {
			return nil, ErrInsufficientFunds
		}

		b := w.Balances()
		remaining := amount
		fromBonus := decimal.Min(b.BalanceBonus, remaining)
		remaining = remaining.Sub(fromBonus)
		fromMain := decimal.Min(b.Balance, remaining)
		remaining = remaining.Sub(fromMain)
		fromWithdraw := remaining

		b.BalanceBonus = b.BalanceBonus.Sub(fromBonus)
		b.Balance = b.Balance.Sub(fromMain)
		b.BalanceWithdrawal = b.BalanceWithdrawal.Sub(fromWithdraw)

		return &change{
			balances: b,
			amount:   amount.Neg(),
			metadata: map[string]string{
				"bonus":    fromBonus.String(),
				"main":     fromMain.String(),
				"withdraw": fromWithdraw.String(),
			},
		}, nil
	})
}

// DebitWithdrawable removes amount from BalanceWithdrawal only. It reserves
// the funds of a PIX withdrawal.
func (s *Service) DebitWithdrawable(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...Option) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	return s.mutate(ctx, entryType, buildOptions(opts), s.existingWallet(userID), func(w *models.Wallet) (*change, error) {
		if w.BalanceWithdrawal.LessThan(amount) {
			return nil, ErrInsufficientFunds
		}
		b := w.Balances()
		b.BalanceWithdrawal = b.BalanceWithdrawal.Sub(amount)
		return &change{
			balances: b,
			amount:   amount.Neg(),
			metadata: map[string]string{"withdraw": amount.String()},
		}, nil
	})
}

// Overwrite sets the three sub-balances of a wallet to absolute values. The
// ledger entry records the difference in total.
func (s *Service) Overwrite(ctx context.Context, walletID string, balances models.Balances, entryType string, opts ...Option) (*models.Wallet, error) {
	if !balances.NonNegative() {
		return nil, ErrInvalidAmount
	}

	load := func(ctx context.Context) (*models.Wallet, error) {
		return s.GetWalletByID(ctx, walletID)
	}
	return s.mutate(ctx, entryType, buildOptions(opts), load, func(w *models.Wallet) (*change, error) {
		return &change{
			balances: balances,
			amount:   balances.Total().Sub(w.Total()),
			metadata: map[string]string{
				"previous_total": w.Total().String(),
				"new_total":      balances.Total().String(),
			},
		}, nil
	})
}

func (s *Service) existingWallet(userID string) func(context.Context) (*models.Wallet, error) {
	return func(ctx context.Context) (*models.Wallet, error) {
		return s.GetWallet(ctx, userID)
	}
}
