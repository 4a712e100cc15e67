package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to wallets created without an explicit currency.
const DefaultCurrency = "BRL"

// Wallet is the current-balance record of a single user.
type Wallet struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Currency          string          `json:"currency"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceWithdrawal decimal.Decimal `json:"balance_withdrawal"`
	BalanceBonus      decimal.Decimal `json:"balance_bonus"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Total is the only figure exposed to users as available funds.
func (w *Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.BalanceWithdrawal).Add(w.BalanceBonus)
}

// Balances returns a copy of the three sub-balances.
func (w *Wallet) Balances() Balances {
	return Balances{
		Balance:           w.Balance,
		BalanceWithdrawal: w.BalanceWithdrawal,
		BalanceBonus:      w.BalanceBonus,
	}
}

// Balances groups the three sub-balances of a wallet.
type Balances struct {
	Balance           decimal.Decimal `json:"balance"`
	BalanceWithdrawal decimal.Decimal `json:"balance_withdrawal"`
	BalanceBonus      decimal.Decimal `json:"balance_bonus"`
}

// Total returns the sum of the three sub-balances.
func (b Balances) Total() decimal.Decimal {
	return b.Balance.Add(b.BalanceWithdrawal).Add(b.BalanceBonus)
}

// NonNegative reports whether no sub-balance is below zero.
func (b Balances) NonNegative() bool {
	return !b.Balance.IsNegative() && !b.BalanceWithdrawal.IsNegative() && !b.BalanceBonus.IsNegative()
}

// LedgerEntry is an immutable record of one balance-affecting event.
// Amount is positive for credits and negative for debits.
type LedgerEntry struct {
	ID           string            `json:"id"`
	WalletID     string            `json:"wallet_id"`
	UserID       string            `json:"user_id"`
	Type         string            `json:"type"`
	Amount       decimal.Decimal   `json:"amount"`
	BalanceAfter decimal.Decimal   `json:"balance_after"`
	GameRoundID  string            `json:"game_round_id,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PixType distinguishes deposits from withdrawals.
type PixType string

const (
	PixIn  PixType = "PIX_IN"
	PixOut PixType = "PIX_OUT"
)

// PixStatus defines the possible states of a PIX transaction.
type PixStatus string

const (
	PixPending  PixStatus = "pending"
	PixComplete PixStatus = "Complete"
	PixCanceled PixStatus = "Canceled"
)

// Terminal reports whether no further transition is allowed.
func (s PixStatus) Terminal() bool {
	return s == PixComplete || s == PixCanceled
}

// PixTransaction is a deposit or withdrawal submitted to the payment provider.
type PixTransaction struct {
	ID             string          `json:"id"`
	ProviderTxID   string          `json:"provider_tx_id"`
	UserID         string          `json:"user_id"`
	Type           PixType         `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Status         PixStatus       `json:"status"`
	PixKey         string          `json:"pix_key,omitempty"`
	PixKeyType     string          `json:"pix_key_type,omitempty"`
	QRCode         string          `json:"qr_code,omitempty"`
	QRCodeImageURL string          `json:"qr_code_image_url,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// RoundSnapshot is a point-in-time copy of a wallet's sub-balances taken at
// the start of a game round.
type RoundSnapshot struct {
	RoundID           string          `json:"round_id"`
	WalletID          string          `json:"wallet_id"`
	UserID            string          `json:"user_id"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceWithdrawal decimal.Decimal `json:"balance_withdrawal"`
	BalanceBonus      decimal.Decimal `json:"balance_bonus"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Balances returns the captured sub-balances.
func (s *RoundSnapshot) Balances() Balances {
	return Balances{
		Balance:           s.Balance,
		BalanceWithdrawal: s.BalanceWithdrawal,
		BalanceBonus:      s.BalanceBonus,
	}
}

// WebhookStatus is the provider-independent outcome carried by a webhook.
type WebhookStatus string

const (
	WebhookPaid     WebhookStatus = "paid"
	WebhookCanceled WebhookStatus = "canceled"
	WebhookExpired  WebhookStatus = "expired"
	WebhookOther    WebhookStatus = "other"
)

// WebhookEvent is the normalized settlement notification. A zero Amount or
// an empty UserID means the provider did not supply the field.
type WebhookEvent struct {
	Provider      string          `json:"provider,omitempty"`
	TransactionID string          `json:"transaction_id"`
	Status        WebhookStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	UserID        string          `json:"user_id,omitempty"`
}
