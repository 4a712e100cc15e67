package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:             url,
		Token:               "tok",
		Secret:              "sec",
		PostbackURL:         "https://example.test/pix/webhooks/feipay",
		WithdrawCallbackURL: "https://example.test/pix/webhooks/feipay",
		Timeout:             time.Second,
		MaxRetries:          2,
		RetryInterval:       time.Millisecond,
	}
}

func TestCreateDeposit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got map[string]interface{}
		var headers http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wallet/deposit/payment", r.URL.Path)
			headers = r.Header.Clone()
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			_, _ = w.Write([]byte(`{"idTransaction":"prov-1","qrcode":"000201","qr_code_image_url":"https://img"}`))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), HMACSigner("sec"), nil)
		charge, err := client.CreateDeposit(context.Background(), DepositRequest{
			UserID: "u1", Amount: decimal.RequireFromString("50.5"), Name: "Ana", Email: "ana@example.test", Document: "123", Phone: "55",
		})

		require.NoError(t, err)
		assert.Equal(t, "prov-1", charge.ProviderTxID)
		assert.Equal(t, "000201", charge.QRCode)
		assert.Equal(t, "https://img", charge.QRCodeImageURL)

		assert.Equal(t, "pix", got["method_pay"])
		assert.Equal(t, 50.5, got["amount"])
		assert.Equal(t, "Ana", got["debtor_name"])
		assert.NotEmpty(t, headers.Get(HeaderIdempotencyKey))
		assert.NotEmpty(t, headers.Get(HeaderSignature))
		assert.NotEmpty(t, headers.Get(HeaderTimestamp))
	})

	t.Run("Retries Server Errors With Same Idempotency Key", func(t *testing.T) {
		var mu sync.Mutex
		var keys []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			keys = append(keys, r.Header.Get(HeaderIdempotencyKey))
			n := len(keys)
			mu.Unlock()
			if n < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"idTransaction":"prov-2"}`))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, nil)
		charge, err := client.CreateDeposit(context.Background(), DepositRequest{Amount: decimal.NewFromInt(1)})

		require.NoError(t, err)
		assert.Equal(t, "prov-2", charge.ProviderTxID)
		require.Len(t, keys, 3)
		assert.Equal(t, keys[0], keys[1])
		assert.Equal(t, keys[0], keys[2])
	})

	t.Run("Gives Up After Max Retries", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, nil)
		_, err := client.CreateDeposit(context.Background(), DepositRequest{Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 3, calls)
	})

	t.Run("Rejected Is Not Retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"invalid document"}`))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, nil)
		_, err := client.CreateDeposit(context.Background(), DepositRequest{Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrRejected)
		assert.False(t, errors.Is(err, ErrUnavailable))
		assert.Equal(t, 1, calls)
	})

	t.Run("Missing Transaction ID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, nil)
		_, err := client.CreateDeposit(context.Background(), DepositRequest{Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestCreateWithdrawal(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pixout", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"id":"out-1","status":"pending"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL+"/"), nil, nil)
	order, err := client.CreateWithdrawal(context.Background(), WithdrawalRequest{
		UserID: "u1", Amount: decimal.NewFromInt(30), PixKey: "ana@example.test", PixKeyType: "email",
	})

	require.NoError(t, err)
	assert.Equal(t, "out-1", order.ProviderTxID)
	assert.Equal(t, "ana@example.test", got["pixKey"])
	assert.Equal(t, "email", got["pixKeyType"])
	assert.Equal(t, "https://example.test/pix/webhooks/feipay", got["baasPostbackUrl"])
}
