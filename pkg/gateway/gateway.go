// Package gateway talks to the PIX payment provider: it creates charges and
// payouts and turns provider webhooks into models.WebhookEvent values.
package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable is returned when the provider could not be reached or
	// kept failing after all retries.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrRejected is returned when the provider refused the request.
	ErrRejected = errors.New("payment gateway rejected the request")
)

// Gateway creates deposits and withdrawals at the payment provider.
type Gateway interface {
	CreateDeposit(ctx context.Context, req DepositRequest) (*DepositCharge, error)
	CreateWithdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalOrder, error)
}

// DepositRequest describes the payer of a PIX charge.
type DepositRequest struct {
	UserID   string
	Amount   decimal.Decimal
	Name     string
	Email    string
	Document string
	Phone    string
}

// DepositCharge is the provider's answer to a deposit request.
type DepositCharge struct {
	ProviderTxID   string
	QRCode         string
	QRCodeImageURL string
}

// WithdrawalRequest describes a PIX payout.
type WithdrawalRequest struct {
	UserID     string
	Amount     decimal.Decimal
	PixKey     string
	PixKeyType string
}

// WithdrawalOrder is the provider's answer to a withdrawal request.
type WithdrawalOrder struct {
	ProviderTxID string
	Status       string
}
