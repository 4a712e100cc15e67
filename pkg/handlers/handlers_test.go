package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/ledger"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/pix"
	roundshandler "github.com/chris/pix-wallet-ledger/pkg/handlers/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/wallets"
	"github.com/chris/pix-wallet-ledger/pkg/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	"github.com/chris/pix-wallet-ledger/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) CreateDeposit(_ context.Context, req gateway.DepositRequest) (*gateway.DepositCharge, error) {
	return &gateway.DepositCharge{ProviderTxID: "dep-1", QRCode: "000201"}, nil
}

func (stubGateway) CreateWithdrawal(_ context.Context, req gateway.WithdrawalRequest) (*gateway.WithdrawalOrder, error) {
	return &gateway.WithdrawalOrder{ProviderTxID: "out-1", Status: "pending"}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	accounts := account.New(store, nil, account.DefaultPolicy(), nil)
	roundSvc := rounds.New(accounts, store, time.Hour, nil)
	settle := settlement.New(stubGateway{}, store, accounts, settlement.Options{}, nil)

	h := NewApiHandler(
		wallets.NewWalletsHandler(accounts),
		ledger.NewLedgerHandler(accounts),
		roundshandler.NewRoundsHandler(roundSvc),
		pix.NewPixHandler(settle, gateway.Normalizers(), nil, nil, nil),
	)
	srv := httptest.NewServer(NewRouter(h, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestWalletFlow(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodGet, "/users/u1/wallet", "")
	require.Equal(t, http.StatusOK, status)
	var wallet api.Wallet
	require.NoError(t, json.Unmarshal(body, &wallet))
	assert.True(t, wallet.TotalBalance.IsZero())

	status, body = do(t, srv, http.MethodPost, "/users/u1/wallet/credit", `{"amount":"100","type":"PIX_IN"}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &wallet))
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(20)))
	assert.True(t, wallet.BalanceWithdrawal.Equal(decimal.NewFromInt(80)))

	status, _ = do(t, srv, http.MethodPost, "/rounds", `{"walletId":"`+wallet.Id.String()+`","roundId":"r1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = do(t, srv, http.MethodPost, "/users/u1/wallet/debit", `{"amount":"30","type":"bet_debit","roundId":"r1"}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &wallet))
	assert.True(t, wallet.TotalBalance.Equal(decimal.NewFromInt(70)))

	status, _ = do(t, srv, http.MethodPost, "/users/u1/wallet/debit", `{"amount":"1000","type":"bet_debit"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = do(t, srv, http.MethodPost, "/rounds/r1/restore", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &wallet))
	assert.True(t, wallet.TotalBalance.Equal(decimal.NewFromInt(100)))

	status, _ = do(t, srv, http.MethodPost, "/rounds/r1/restore", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, srv, http.MethodGet, "/wallets/"+wallet.Id.String()+"/ledger?limit=2", "")
	require.Equal(t, http.StatusOK, status)
	var entries []api.LedgerEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, rounds.EntryRoundRestore, entries[0].Type)
	assert.Equal(t, "bet_debit", entries[1].Type)

	status, body = do(t, srv, http.MethodGet, "/wallets/"+wallet.Id.String()+"/ledger", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "PIX_IN", entries[2].Type)
}

func TestDepositWebhookFlow(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/pix/deposits", `{"userId":"u2","amount":"50"}`)
	require.Equal(t, http.StatusCreated, status)
	var dep api.Deposit
	require.NoError(t, json.Unmarshal(body, &dep))
	assert.Equal(t, "dep-1", dep.TransactionId)

	paid := `{"transaction_id":"dep-1","status":"paid","amount":"50","user_id":"u2"}`
	for i := 0; i < 2; i++ {
		status, body = do(t, srv, http.MethodPost, "/pix/webhooks/canonical", paid)
		require.Equal(t, http.StatusOK, status)
		var ack api.WebhookAck
		require.NoError(t, json.Unmarshal(body, &ack))
		assert.True(t, ack.Applied)
	}

	status, body = do(t, srv, http.MethodGet, "/users/u2/wallet", "")
	require.Equal(t, http.StatusOK, status)
	var wallet api.Wallet
	require.NoError(t, json.Unmarshal(body, &wallet))
	assert.True(t, wallet.TotalBalance.Equal(decimal.NewFromInt(50)))

	status, body = do(t, srv, http.MethodGet, "/users/u2/pix", "")
	require.Equal(t, http.StatusOK, status)
	var txs []api.PixTransaction
	require.NoError(t, json.Unmarshal(body, &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, api.Complete, txs[0].Status)
}

func TestParameterBinding(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodGet, "/wallets/not-a-uuid/ledger", "")
	assert.Equal(t, http.StatusBadRequest, status)
	var apiErr api.Error
	require.NoError(t, json.Unmarshal(body, &apiErr))
	assert.Equal(t, "bad_request", apiErr.Error)

	status, _ = do(t, srv, http.MethodGet, "/wallets/6f1c1c2e-8f7e-4e0a-9a55-2b9c2d7a1b11/ledger?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
