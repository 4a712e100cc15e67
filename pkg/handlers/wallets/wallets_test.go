package wallets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/wallets"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *mockAccounts) Credit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, entryType, len(opts))
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *mockAccounts) Debit(ctx context.Context, userID string, amount decimal.Decimal, entryType string, opts ...account.Option) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, entryType, len(opts))
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func amountIs(want string) any {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString(want)) })
}

func testWallet() *models.Wallet {
	return &models.Wallet{
		ID:                uuid.NewString(),
		UserID:            "user-a",
		Currency:          "BRL",
		Balance:           decimal.RequireFromString("20"),
		BalanceWithdrawal: decimal.RequireFromString("80"),
		BalanceBonus:      decimal.Zero,
		Version:           2,
	}
}

func TestGetWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("GetOrCreate", mock.Anything, "user-a").Return(testWallet(), nil)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodGet, "/users/user-a/wallet", nil)
		rr := httptest.NewRecorder()

		h.GetWallet(rr, req, "user-a")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.Wallet
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.True(t, got.TotalBalance.Equal(decimal.RequireFromString("100")))
		accounts.AssertExpectations(t)
	})

	t.Run("Invalid User", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("GetOrCreate", mock.Anything, "").Return(nil, account.ErrInvalidUser)

		h := wallets.NewWalletsHandler(accounts)
		rr := httptest.NewRecorder()
		h.GetWallet(rr, httptest.NewRequest(http.MethodGet, "/users//wallet", nil), "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreditWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("Credit", mock.Anything, "user-a", amountIs("100"), "PIX_IN", 0).Return(testWallet(), nil)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodPost, "/users/user-a/wallet/credit", strings.NewReader(`{"amount":"100","type":"PIX_IN"}`))
		rr := httptest.NewRecorder()

		h.CreditWallet(rr, req, "user-a")

		assert.Equal(t, http.StatusOK, rr.Code)
		accounts.AssertExpectations(t)
	})

	t.Run("Bonus With Round", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("Credit", mock.Anything, "user-a", amountIs("5"), "bet_win", 2).Return(testWallet(), nil)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodPost, "/users/user-a/wallet/credit", strings.NewReader(`{"amount":5,"type":"bet_win","bonus":true,"roundId":"r1"}`))
		rr := httptest.NewRecorder()

		h.CreditWallet(rr, req, "user-a")

		assert.Equal(t, http.StatusOK, rr.Code)
		accounts.AssertExpectations(t)
	})

	t.Run("Invalid Body", func(t *testing.T) {
		h := wallets.NewWalletsHandler(new(mockAccounts))
		rr := httptest.NewRecorder()
		h.CreditWallet(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`)), "user-a")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Missing Type", func(t *testing.T) {
		h := wallets.NewWalletsHandler(new(mockAccounts))
		rr := httptest.NewRecorder()
		h.CreditWallet(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"1"}`)), "user-a")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDebitWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("Debit", mock.Anything, "user-a", amountIs("30"), "bet_debit", 1).Return(testWallet(), nil)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodPost, "/users/user-a/wallet/debit", strings.NewReader(`{"amount":"30","type":"bet_debit","roundId":"r1"}`))
		rr := httptest.NewRecorder()

		h.DebitWallet(rr, req, "user-a")

		assert.Equal(t, http.StatusOK, rr.Code)
		accounts.AssertExpectations(t)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("Debit", mock.Anything, "user-a", amountIs("500"), "bet_debit", 0).Return(nil, account.ErrInsufficientFunds)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodPost, "/users/user-a/wallet/debit", strings.NewReader(`{"amount":"500","type":"bet_debit"}`))
		rr := httptest.NewRecorder()

		h.DebitWallet(rr, req, "user-a")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "insufficient_funds", body.Error)
	})

	t.Run("Wallet Not Found", func(t *testing.T) {
		accounts := new(mockAccounts)
		accounts.On("Debit", mock.Anything, "ghost", amountIs("1"), "bet_debit", 0).Return(nil, account.ErrWalletNotFound)

		h := wallets.NewWalletsHandler(accounts)
		req := httptest.NewRequest(http.MethodPost, "/users/ghost/wallet/debit", strings.NewReader(`{"amount":"1","type":"bet_debit"}`))
		rr := httptest.NewRecorder()

		h.DebitWallet(rr, req, "ghost")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
