package rounds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/respond"
	"github.com/chris/pix-wallet-ledger/pkg/mapping"
	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// Rounds is the part of rounds.Service used by the round endpoints.
type Rounds interface {
	Begin(ctx context.Context, walletID, roundID string) (*models.RoundSnapshot, error)
	Restore(ctx context.Context, roundID string) (*models.Wallet, error)
}

// RoundsHandler holds the dependencies for round snapshot handlers.
type RoundsHandler struct {
	Rounds Rounds
}

// NewRoundsHandler creates a new RoundsHandler.
func NewRoundsHandler(rounds Rounds) *RoundsHandler {
	return &RoundsHandler{Rounds: rounds}
}

// BeginRound snapshots the wallet balances at the start of a round.
func (h *RoundsHandler) BeginRound(w http.ResponseWriter, r *http.Request) {
	var body api.BeginRound
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	snap, err := h.Rounds.Begin(r.Context(), body.WalletId.String(), body.RoundId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiRoundSnapshot(snap))
}

// RestoreRound puts the wallet back to the balances captured for the round.
func (h *RoundsHandler) RestoreRound(w http.ResponseWriter, r *http.Request, roundId string) {
	wallet, err := h.Rounds.Restore(r.Context(), roundId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}
