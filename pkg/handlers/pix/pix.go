package pix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/respond"
	"github.com/chris/pix-wallet-ledger/pkg/mapping"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/queue"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	"github.com/shopspring/decimal"
)

const maxWebhookBody = 1 << 20

// Settlement is the part of settlement.Service used by the PIX endpoints.
type Settlement interface {
	InitiateDeposit(ctx context.Context, userID string, amount decimal.Decimal, payer settlement.Payer) (*settlement.DepositReference, error)
	InitiateWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, pixKey, pixKeyType string) (*settlement.WithdrawalReference, error)
	ListTransactions(ctx context.Context, userID string) ([]models.PixTransaction, error)
	ProcessWebhook(ctx context.Context, event models.WebhookEvent) (bool, error)
}

// PixHandler holds the dependencies for PIX handlers.
type PixHandler struct {
	Settlement  Settlement
	Normalizers map[string]gateway.Normalizer
	// Queue is optional. Webhooks are processed inline without it.
	Queue queue.WebhookPublisher
	// Verifiers holds the providers whose webhooks must be signed. Providers
	// without an entry are accepted unsigned.
	Verifiers map[string]*gateway.Verifier
	Logger    *slog.Logger
}

// NewPixHandler creates a new PixHandler.
func NewPixHandler(svc Settlement, normalizers map[string]gateway.Normalizer, q queue.WebhookPublisher, verifiers map[string]*gateway.Verifier, logger *slog.Logger) *PixHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PixHandler{
		Settlement:  svc,
		Normalizers: normalizers,
		Queue:       q,
		Verifiers:   verifiers,
		Logger:      logger.With("component", "pix_handler"),
	}
}

// CreateDeposit requests a QR code from the provider. The wallet is credited
// later, when the paid webhook arrives.
func (h *PixHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var body api.NewDeposit
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ref, err := h.Settlement.InitiateDeposit(r.Context(), body.UserId, body.Amount, mapping.ToDomainPayer(&body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiDeposit(ref))
}

// CreateWithdrawal reserves the amount and submits the transfer to the provider.
func (h *PixHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body api.NewWithdrawal
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ref, err := h.Settlement.InitiateWithdrawal(r.Context(), body.UserId, body.Amount, body.PixKey, body.PixKeyType)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiWithdrawal(ref))
}

func (h *PixHandler) ListPixTransactions(w http.ResponseWriter, r *http.Request, userId api.UserId) {
	txs, err := h.Settlement.ListTransactions(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	apiTxs := make([]*api.PixTransaction, len(txs))
	for i, tx := range txs {
		apiTxs[i] = mapping.ToApiPixTransaction(&tx)
	}

	respond.JSON(w, http.StatusOK, apiTxs)
}

// ReceiveWebhook acknowledges provider notifications. Only failures the
// provider should retry produce a 5xx.
func (h *PixHandler) ReceiveWebhook(w http.ResponseWriter, r *http.Request, provider string) {
	ctx := r.Context()
	log := h.Logger.With("provider", provider)

	normalizer, ok := h.Normalizers[provider]
	if !ok {
		respond.JSON(w, http.StatusNotFound, api.Error{Error: "unknown_provider", Message: "Unknown webhook provider"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respond.BadRequest(w, "Unreadable webhook body")
		return
	}

	if v, ok := h.Verifiers[provider]; ok {
		if err := v.Verify(r.Header.Get(gateway.HeaderTimestamp), body, r.Header.Get(gateway.HeaderSignature)); err != nil {
			log.WarnContext(ctx, "webhook signature rejected", "error", err)
			respond.JSON(w, http.StatusUnauthorized, api.Error{Error: "invalid_signature", Message: "Invalid webhook signature"})
			return
		}
	}

	event, err := normalizer.Normalize(body)
	if err != nil {
		log.WarnContext(ctx, "webhook rejected", "error", err)
		respond.JSON(w, http.StatusOK, api.WebhookAck{Applied: false, Status: api.Rejected})
		return
	}
	event.Provider = provider

	if h.Queue != nil {
		if err := h.Queue.PublishWebhook(ctx, *event); err != nil {
			log.ErrorContext(ctx, "failed to enqueue webhook", "transaction_id", event.TransactionID, "error", err)
			respond.JSON(w, http.StatusServiceUnavailable, api.Error{Error: "queue_unavailable", Message: "Webhook could not be accepted, retry later"})
			return
		}
		respond.JSON(w, http.StatusOK, api.WebhookAck{Applied: false, Status: api.Queued})
		return
	}

	applied, err := h.Settlement.ProcessWebhook(ctx, *event)
	switch {
	case errors.Is(err, settlement.ErrWebhookMismatch):
		log.WarnContext(ctx, "webhook rejected", "transaction_id", event.TransactionID, "error", err)
		respond.JSON(w, http.StatusOK, api.WebhookAck{Applied: false, Status: api.Rejected})
	case err != nil:
		respond.Error(w, r, err)
	case applied:
		respond.JSON(w, http.StatusOK, api.WebhookAck{Applied: true, Status: api.Applied})
	default:
		respond.JSON(w, http.StatusOK, api.WebhookAck{Applied: false, Status: api.Ignored})
	}
}
