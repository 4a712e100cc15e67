// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, api.Error{Error: "bad_request", Message: message})
}

type mapped struct {
	target  error
	status  int
	code    string
	message string
}

var table = []mapped{
	{account.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Amount must be greater than zero"},
	{account.ErrInvalidUser, http.StatusBadRequest, "invalid_user", "User ID is required"},
	{rounds.ErrInvalidRound, http.StatusBadRequest, "invalid_round", "Round ID is required"},
	{settlement.ErrInvalidPixKey, http.StatusBadRequest, "invalid_pix_key", "PIX key is required"},
	{account.ErrWalletNotFound, http.StatusNotFound, "wallet_not_found", "Wallet not found"},
	{rounds.ErrSnapshotNotFound, http.StatusNotFound, "snapshot_not_found", "No snapshot for this round"},
	{rounds.ErrSnapshotExists, http.StatusConflict, "snapshot_exists", "A snapshot already exists for this round"},
	{account.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds", "Insufficient funds"},
	{settlement.ErrGatewayUnavailable, http.StatusBadGateway, "gateway_unavailable", "Payment provider unavailable"},
	{account.ErrConcurrentUpdate, http.StatusServiceUnavailable, "concurrent_update", "Wallet is busy, try again"},
}

// Error maps err to a status and a stable code. Unmapped errors are logged
// and reported as 500 without their text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range table {
		if errors.Is(err, m.target) {
			JSON(w, m.status, api.Error{Error: m.code, Message: m.message})
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	JSON(w, http.StatusInternalServerError, api.Error{Error: "internal", Message: "Internal server error"})
}
