package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

// Config holds the provider endpoint and credentials.
type Config struct {
	BaseURL             string
	Token               string
	Secret              string
	PostbackURL         string
	WithdrawCallbackURL string
	Timeout             time.Duration
	MaxRetries          int
	RetryInterval       time.Duration
}

// Client is the HTTP Gateway for FeiPay-style providers.
type Client struct {
	cfg     Config
	http    *http.Client
	signer  Signer
	headers http.Header
	logger  *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client. signer may be nil.
func NewClient(cfg Config, signer Signer, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 200 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		signer:  signer,
		headers: headers,
		logger:  logger.With("component", "gateway"),
	}
}

type depositPayload struct {
	Token                string      `json:"token"`
	Secret               string      `json:"secret"`
	Postback             string      `json:"postback"`
	Amount               json.Number `json:"amount"`
	DebtorName           string      `json:"debtor_name"`
	Email                string      `json:"email"`
	DebtorDocumentNumber string      `json:"debtor_document_number"`
	Phone                string      `json:"phone"`
	MethodPay            string      `json:"method_pay"`
	SplitEmail           string      `json:"split_email"`
	SplitPercentage      string      `json:"split_percentage"`
}

type depositResponse struct {
	IDTransaction  string `json:"idTransaction"`
	QRCode         string `json:"qrcode"`
	QRCodeImageURL string `json:"qr_code_image_url"`
}

type withdrawalPayload struct {
	Token           string      `json:"token"`
	Secret          string      `json:"secret"`
	BaasPostbackURL string      `json:"baasPostbackUrl"`
	Amount          json.Number `json:"amount"`
	PixKey          string      `json:"pixKey"`
	PixKeyType      string      `json:"pixKeyType"`
}

type withdrawalResponse struct {
	IDTransaction string `json:"idTransaction"`
	ID            string `json:"id"`
	Status        string `json:"status"`
}

// CreateDeposit creates a PIX charge and returns its QR payload.
func (c *Client) CreateDeposit(ctx context.Context, req DepositRequest) (*DepositCharge, error) {
	payload := depositPayload{
		Token:                c.cfg.Token,
		Secret:               c.cfg.Secret,
		Postback:             c.cfg.PostbackURL,
		Amount:               json.Number(req.Amount.String()),
		DebtorName:           req.Name,
		Email:                req.Email,
		DebtorDocumentNumber: req.Document,
		Phone:                req.Phone,
		MethodPay:            "pix",
	}

	var resp depositResponse
	if err := c.post(ctx, "wallet/deposit/payment", payload, &resp); err != nil {
		return nil, err
	}
	if resp.IDTransaction == "" {
		return nil, fmt.Errorf("%w: deposit response has no transaction id", ErrUnavailable)
	}

	c.logger.InfoContext(ctx, "pix deposit created", "user_id", req.UserID, "transaction_id", resp.IDTransaction)
	return &DepositCharge{
		ProviderTxID:   resp.IDTransaction,
		QRCode:         resp.QRCode,
		QRCodeImageURL: resp.QRCodeImageURL,
	}, nil
}

// CreateWithdrawal asks the provider to pay amount to the given PIX key.
func (c *Client) CreateWithdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalOrder, error) {
	payload := withdrawalPayload{
		Token:           c.cfg.Token,
		Secret:          c.cfg.Secret,
		BaasPostbackURL: c.cfg.WithdrawCallbackURL,
		Amount:          json.Number(req.Amount.String()),
		PixKey:          req.PixKey,
		PixKeyType:      req.PixKeyType,
	}

	var resp withdrawalResponse
	if err := c.post(ctx, "pixout", payload, &resp); err != nil {
		return nil, err
	}
	id := resp.IDTransaction
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return nil, fmt.Errorf("%w: withdrawal response has no transaction id", ErrUnavailable)
	}

	c.logger.InfoContext(ctx, "pix withdrawal created", "user_id", req.UserID, "transaction_id", id)
	return &WithdrawalOrder{ProviderTxID: id, Status: resp.Status}, nil
}

// rejection is a 4xx answer. It is never retried.
type rejection struct {
	status int
	body   string
}

func (r *rejection) Error() string {
	return fmt.Sprintf("status %d: %s", r.status, r.body)
}

// post sends one logical request. Retries reuse the body and the idempotency key.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + path
	idempotencyKey := uuid.New().String()

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header = c.headers.Clone()
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
		if c.signer != nil {
			signed, err := c.signer(body)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("failed to sign gateway request: %w", err))
			}
			for k, vs := range signed {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.WarnContext(ctx, "gateway request failed", "path", path, "attempt", attempt, "error", err)
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			c.logger.WarnContext(ctx, "gateway server error", "path", path, "attempt", attempt, "status", resp.StatusCode)
			return fmt.Errorf("status %d", resp.StatusCode)
		case resp.StatusCode >= http.StatusBadRequest:
			return backoff.Permanent(&rejection{status: resp.StatusCode, body: string(data)})
		}

		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode gateway response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			c.logger.ErrorContext(ctx, "gateway rejected request", "path", path, "status", rej.status)
			return fmt.Errorf("%w: %s", ErrRejected, rej.Error())
		}
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	return nil
}
