package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *mockClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func testSnapshot() *models.RoundSnapshot {
	return &models.RoundSnapshot{
		RoundID:           "round-1",
		WalletID:          "wallet-1",
		UserID:            "user-1",
		Balance:           decimal.RequireFromString("12.34"),
		BalanceWithdrawal: decimal.RequireFromString("50"),
		BalanceBonus:      decimal.Zero,
		CreatedAt:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client := new(mockClient)
		client.On("SetNX", ctx, "round-snapshot:round-1", mock.Anything, 6*time.Hour).Return(redis.NewBoolResult(true, nil))

		err := NewSnapshotStore(client).SaveSnapshot(ctx, testSnapshot(), 6*time.Hour)

		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		client := new(mockClient)
		client.On("SetNX", ctx, "round-snapshot:round-1", mock.Anything, time.Hour).Return(redis.NewBoolResult(false, nil))

		err := NewSnapshotStore(client).SaveSnapshot(ctx, testSnapshot(), time.Hour)

		assert.ErrorIs(t, err, storage.ErrSnapshotExists)
	})

	t.Run("Redis Error", func(t *testing.T) {
		client := new(mockClient)
		client.On("SetNX", ctx, mock.Anything, mock.Anything, mock.Anything).Return(redis.NewBoolResult(false, errors.New("connection refused")))

		err := NewSnapshotStore(client).SaveSnapshot(ctx, testSnapshot(), time.Hour)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save snapshot for round round-1")
	})
}

func TestTakeSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		data, err := json.Marshal(testSnapshot())
		require.NoError(t, err)

		client := new(mockClient)
		client.On("GetDel", ctx, "round-snapshot:round-1").Return(redis.NewStringResult(string(data), nil))

		snap, err := NewSnapshotStore(client).TakeSnapshot(ctx, "round-1")

		require.NoError(t, err)
		assert.Equal(t, "user-1", snap.UserID)
		assert.True(t, snap.Balance.Equal(decimal.RequireFromString("12.34")))
		assert.True(t, snap.BalanceWithdrawal.Equal(decimal.NewFromInt(50)))
		client.AssertExpectations(t)
	})

	t.Run("Missing Or Expired", func(t *testing.T) {
		client := new(mockClient)
		client.On("GetDel", ctx, "round-snapshot:round-2").Return(redis.NewStringResult("", redis.Nil))

		_, err := NewSnapshotStore(client).TakeSnapshot(ctx, "round-2")

		assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
	})

	t.Run("Redis Error", func(t *testing.T) {
		client := new(mockClient)
		client.On("GetDel", ctx, mock.Anything).Return(redis.NewStringResult("", errors.New("timeout")))

		_, err := NewSnapshotStore(client).TakeSnapshot(ctx, "round-1")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrSnapshotNotFound)
	})
}
