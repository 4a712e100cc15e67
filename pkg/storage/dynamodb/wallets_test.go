package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/chris/pix-wallet-ledger/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testWallet() *models.Wallet {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Wallet{
		ID:                "wallet-1",
		UserID:            "test-user",
		Currency:          models.DefaultCurrency,
		Balance:           decimal.RequireFromString("20.10"),
		BalanceWithdrawal: decimal.RequireFromString("80.40"),
		BalanceBonus:      decimal.RequireFromString("5"),
		Version:           3,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func TestCreateWallet(t *testing.T) {
	wallet := testWallet()

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			balance, ok := in.Item["balance"].(*types.AttributeValueMemberN)
			return aws.ToString(in.TableName) == "wallets" &&
				aws.ToString(in.ConditionExpression) == "attribute_not_exists(user_id)" &&
				ok && balance.Value == "20.1"
		}), mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		createdWallet, err := store.CreateWallet(context.Background(), wallet)

		assert.NoError(t, err)
		assert.Equal(t, wallet, createdWallet)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.CreateWallet(context.Background(), wallet)

		assert.ErrorIs(t, err, storage.ErrWalletExists)
		assert.Contains(t, err.Error(), "wallet for user ID test-user already exists")
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.CreateWallet(context.Background(), wallet)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create wallet in DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestGetWallet(t *testing.T) {
	wallet := testWallet()

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		walletAV, err := attributevalue.MarshalMap(toWalletItem(wallet))
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return aws.ToBool(in.ConsistentRead)
		}), mock.Anything).Return(&dynamodb.GetItemOutput{Item: walletAV}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		retrieved, err := store.GetWallet(context.Background(), "test-user")

		require.NoError(t, err)
		assert.Equal(t, wallet.ID, retrieved.ID)
		assert.Equal(t, wallet.UserID, retrieved.UserID)
		assert.Equal(t, int64(3), retrieved.Version)
		assertAmount(t, "20.10", retrieved.Balance)
		assertAmount(t, "80.40", retrieved.BalanceWithdrawal)
		assertAmount(t, "5", retrieved.BalanceBonus)
		assert.True(t, wallet.CreatedAt.Equal(retrieved.CreatedAt))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.GetWallet(context.Background(), "test-user")

		assert.ErrorIs(t, err, storage.ErrWalletNotFound)
		assert.Contains(t, err.Error(), "wallet for user ID test-user not found")
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.GetWallet(context.Background(), "test-user")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get wallet from DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestGetWalletByID(t *testing.T) {
	wallet := testWallet()
	walletAV, err := attributevalue.MarshalMap(toWalletItem(wallet))
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToString(in.IndexName) == walletIDIndex
		}), mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{walletAV}}, nil)
		mockClient.On("GetItem", mock.Anything, mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: walletAV}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		retrieved, err := store.GetWalletByID(context.Background(), "wallet-1")

		require.NoError(t, err)
		assert.Equal(t, "test-user", retrieved.UserID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.GetWalletByID(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrWalletNotFound)
		mockClient.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		store := New(mockClient, "transactions", "wallets", "ledger")
		_, err := store.GetWalletByID(context.Background(), "wallet-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query wallet by ID")
	})
}

func TestApplyMutation(t *testing.T) {
	newMutation := func(settle bool) *storage.WalletMutation {
		w := testWallet()
		m := &storage.WalletMutation{
			Wallet: w,
			Entry: &models.LedgerEntry{
				ID:           "entry-1",
				WalletID:     w.ID,
				UserID:       w.UserID,
				Type:         "BET",
				Amount:       decimal.RequireFromString("-10"),
				BalanceAfter: w.Total(),
				CreatedAt:    time.Now().UTC(),
			},
		}
		if settle {
			m.Settlement = &storage.SettlementGuard{ProviderTxID: "prov-1", Status: models.PixComplete, At: time.Now().UTC()}
		}
		return m
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 2 {
				return false
			}
			update := in.TransactItems[0].Update
			version, ok := update.ExpressionAttributeValues[":version"].(*types.AttributeValueMemberN)
			return ok && version.Value == "3" &&
				aws.ToString(update.ConditionExpression) == "version = :version" &&
				aws.ToString(in.TransactItems[1].Put.TableName) == "ledger"
		}), mock.Anything).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		m := newMutation(false)
		err := store.ApplyMutation(context.Background(), m)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), m.Wallet.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("With Settlement", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 3 {
				return false
			}
			update := in.TransactItems[2].Update
			return aws.ToString(update.TableName) == "transactions" &&
				aws.ToString(update.ConditionExpression) == "#status = :pending_status"
		}), mock.Anything).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		store := New(mockClient, "transactions", "wallets", "ledger")
		err := store.ApplyMutation(context.Background(), newMutation(true))

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Version Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		canceled := &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything, mock.Anything).Return(nil, canceled)

		store := New(mockClient, "transactions", "wallets", "ledger")
		m := newMutation(false)
		err := store.ApplyMutation(context.Background(), m)

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
		assert.Equal(t, int64(3), m.Wallet.Version)
	})

	t.Run("Already Settled", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		canceled := &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
			},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything, mock.Anything).Return(nil, canceled)

		store := New(mockClient, "transactions", "wallets", "ledger")
		err := store.ApplyMutation(context.Background(), newMutation(true))

		assert.ErrorIs(t, err, storage.ErrAlreadySettled)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		store := New(mockClient, "transactions", "wallets", "ledger")
		err := store.ApplyMutation(context.Background(), newMutation(false))

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrVersionConflict)
		assert.Contains(t, err.Error(), "failed to execute wallet mutation")
	})
}
