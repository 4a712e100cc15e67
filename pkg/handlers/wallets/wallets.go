package wallets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/respond"
	"github.com/chris/pix-wallet-ledger/pkg/mapping"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// Accounts is the part of account.Service used by the wallet endpoints.
type Accounts interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error)
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Accounts Accounts
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(accounts Accounts) *WalletsHandler {
	return &WalletsHandler{Accounts: accounts}
}

// GetWallet returns the user's wallet, creating an empty one on first access.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request, userId api.UserId) {
	wallet, err := h.Accounts.GetOrCreate(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}

// CreditWallet splits a credit across the wallet unless the body targets the bonus balance.
func (h *WalletsHandler) CreditWallet(w http.ResponseWriter, r *http.Request, userId api.UserId) {
	change, ok := decodeChange(w, r)
	if !ok {
		return
	}

	var opts []account.Option
	if change.Bonus != nil && *change.Bonus {
		opts = append(opts, account.AsBonus())
	}
	if change.RoundId != nil {
		opts = append(opts, account.WithRoundID(*change.RoundId))
	}

	wallet, err := h.Accounts.Credit(r.Context(), userId, change.Amount, change.Type, opts...)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}

// DebitWallet draws from bonus, then balance, then the withdrawable balance.
func (h *WalletsHandler) DebitWallet(w http.ResponseWriter, r *http.Request, userId api.UserId) {
	change, ok := decodeChange(w, r)
	if !ok {
		return
	}

	var opts []account.Option
	if change.RoundId != nil {
		opts = append(opts, account.WithRoundID(*change.RoundId))
	}

	wallet, err := h.Accounts.Debit(r.Context(), userId, change.Amount, change.Type, opts...)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}

func decodeChange(w http.ResponseWriter, r *http.Request) (*api.WalletChange, bool) {
	var change api.WalletChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return nil, false
	}
	if change.Type == "" {
		respond.BadRequest(w, "type is required")
		return nil, false
	}
	return &change, true
}
