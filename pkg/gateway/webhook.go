package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidWebhook is returned for bodies that cannot be normalized.
var ErrInvalidWebhook = errors.New("invalid webhook payload")

// Normalizer turns a provider webhook body into a WebhookEvent.
type Normalizer interface {
	Normalize(body []byte) (*models.WebhookEvent, error)
}

// Normalizers returns the known normalizers keyed by provider name.
func Normalizers() map[string]Normalizer {
	return map[string]Normalizer{
		"feipay":    FeiPayNormalizer{},
		"canonical": CanonicalNormalizer{},
	}
}

// NormalizeStatus maps a provider status word to a WebhookStatus.
func NormalizeStatus(status string) models.WebhookStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid", "approved", "completed", "complete":
		return models.WebhookPaid
	case "canceled", "cancelled", "refused", "failed":
		return models.WebhookCanceled
	case "expired":
		return models.WebhookExpired
	default:
		return models.WebhookOther
	}
}

// FeiPayNormalizer reads FeiPay postbacks.
type FeiPayNormalizer struct{}

type feiPayWebhook struct {
	IDTransaction   string          `json:"idTransaction"`
	Status          string          `json:"status"`
	Amount          json.RawMessage `json:"amount"`
	UserID          string          `json:"userId"`
	TypeTransaction string          `json:"typeTransaction"`
}

func (FeiPayNormalizer) Normalize(body []byte) (*models.WebhookEvent, error) {
	var in feiPayWebhook
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	if in.IDTransaction == "" {
		return nil, fmt.Errorf("%w: missing idTransaction", ErrInvalidWebhook)
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	return &models.WebhookEvent{
		Provider:      "feipay",
		TransactionID: in.IDTransaction,
		Status:        NormalizeStatus(in.Status),
		Amount:        amount,
		UserID:        in.UserID,
	}, nil
}

// CanonicalNormalizer reads the internal event shape, used by trusted
// internal callers and for replays.
type CanonicalNormalizer struct{}

type canonicalWebhook struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        json.RawMessage `json:"amount"`
	UserID        string          `json:"user_id"`
}

func (CanonicalNormalizer) Normalize(body []byte) (*models.WebhookEvent, error) {
	var in canonicalWebhook
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	if in.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction_id", ErrInvalidWebhook)
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	return &models.WebhookEvent{
		Provider:      "canonical",
		TransactionID: in.TransactionID,
		Status:        NormalizeStatus(in.Status),
		Amount:        amount,
		UserID:        in.UserID,
	}, nil
}

// parseAmount accepts numbers and numeric strings. A missing, null or empty
// amount is zero, which means "not supplied".
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad amount %q", ErrInvalidWebhook, s)
	}
	return d, nil
}
