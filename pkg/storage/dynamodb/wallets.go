package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// CreateWallet creates a new wallet record in DynamoDB.
func (s *Store) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	walletAV, err := attributevalue.MarshalMap(toWalletItem(wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.WalletsTableName),
		Item:                walletAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"), // One wallet per user.
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("wallet for user ID %s: %w", wallet.UserID, storage.ErrWalletExists)
		}
		return nil, fmt.Errorf("failed to create wallet in DynamoDB: %w", err)
	}

	return wallet, nil
}

// GetWallet retrieves a user's wallet from DynamoDB by their user ID.
func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.WalletsTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrWalletNotFound)
	}

	var item walletItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return item.toModel(), nil
}

// GetWalletByID resolves a wallet through the wallet_id index and then
// re-reads the base item, since index reads are eventually consistent.
func (s *Store) GetWalletByID(ctx context.Context, walletID string) (*models.Wallet, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.WalletsTableName),
		IndexName:              aws.String(walletIDIndex),
		KeyConditionExpression: aws.String("wallet_id = :walletID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":walletID": &types.AttributeValueMemberS{Value: walletID},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet by ID: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("wallet %s: %w", walletID, storage.ErrWalletNotFound)
	}

	var item walletItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return s.GetWallet(ctx, item.UserID)
}

// ApplyMutation writes new balances, the ledger entry and an optional PIX
// transition in one TransactWriteItems call. The wallet update is guarded by
// an optimistic version check.
func (s *Store) ApplyMutation(ctx context.Context, m *storage.WalletMutation) error {
	w := m.Wallet
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now().UTC()
	}

	entryAV, err := attributevalue.MarshalMap(toLedgerItem(m.Entry))
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	values := map[string]types.AttributeValue{
		":inc":     &types.AttributeValueMemberN{Value: "1"},
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", w.Version)},
	}
	for name, v := range map[string]any{
		":balance":    amount{w.Balance},
		":withdrawal": amount{w.BalanceWithdrawal},
		":bonus":      amount{w.BalanceBonus},
		":now":        w.UpdatedAt,
	} {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s for wallet mutation: %w", name, err)
		}
		values[name] = av
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Update the wallet balances.
			Update: &types.Update{
				TableName:                 aws.String(s.WalletsTableName),
				Key:                       map[string]types.AttributeValue{"user_id": &types.AttributeValueMemberS{Value: w.UserID}},
				UpdateExpression:          aws.String("SET balance = :balance, balance_withdrawal = :withdrawal, balance_bonus = :bonus, version = version + :inc, updated_at = :now"),
				ConditionExpression:       aws.String("version = :version"),
				ExpressionAttributeValues: values,
			},
		},
		{
			// Operation 2: Append the ledger entry.
			Put: &types.Put{
				TableName:           aws.String(s.LedgerTableName),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		},
	}

	if m.Settlement != nil {
		// Operation 3: Move the PIX transaction out of pending.
		update, err := s.settlementUpdate(*m.Settlement)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if m.Settlement != nil && reasonCode(tce.CancellationReasons, 2) == "ConditionalCheckFailed" {
				return storage.ErrAlreadySettled
			}
			switch reasonCode(tce.CancellationReasons, 0) {
			case "ConditionalCheckFailed", "TransactionConflict":
				return fmt.Errorf("wallet for user ID %s: %w", w.UserID, storage.ErrVersionConflict)
			}
		}
		return fmt.Errorf("failed to execute wallet mutation: %w", err)
	}

	w.Version++
	return nil
}

func reasonCode(reasons []types.CancellationReason, i int) string {
	if i >= len(reasons) {
		return ""
	}
	return aws.ToString(reasons[i].Code)
}
