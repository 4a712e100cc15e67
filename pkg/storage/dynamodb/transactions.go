package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// CreateTransaction records a new PIX transaction keyed by its provider transaction ID.
func (s *Store) CreateTransaction(ctx context.Context, tx *models.PixTransaction) error {
	slog.Log(ctx, slog.LevelDebug, "creating pix transaction", "transaction_id", tx.ProviderTxID, "type", tx.Type)

	txAV, err := attributevalue.MarshalMap(toPixItem(tx))
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TransactionsTableName),
		Item:                txAV,
		ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("transaction %s: %w", tx.ProviderTxID, storage.ErrPixTransactionExists)
		}
		return fmt.Errorf("failed to create transaction in DynamoDB: %w", err)
	}

	return nil
}

// GetTransaction retrieves a PIX transaction from DynamoDB by its provider transaction ID.
func (s *Store) GetTransaction(ctx context.Context, providerTxID string) (*models.PixTransaction, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"transaction_id": providerTxID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.TransactionsTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("transaction with ID %s: %w", providerTxID, storage.ErrPixTransactionNotFound)
	}

	var item pixItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	tx := item.toModel()
	return &tx, nil
}
