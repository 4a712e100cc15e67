package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// GetStuckTransactions returns the transactions still pending that were
// created more than maxAge ago, oldest first.
func (s *Store) GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.PixTransaction, error) {
	cutoff := s.Now().Add(-maxAge).UnixNano()

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(pendingByCreatedIndex),
		KeyConditionExpression: aws.String("#status = :status AND created_at_ns < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PixPending)},
			":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff, 10)},
		},
	}

	items, err := s.queryAll(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stuck transactions: %w", err)
	}

	return unmarshalPixItems(items)
}

func (s *Store) ListTransactionsByUserID(ctx context.Context, userID string) ([]models.PixTransaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}

	items, err := s.queryAll(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for transactions by user ID: %w", err)
	}

	return unmarshalPixItems(items)
}

func (s *Store) ListLedgerEntries(ctx context.Context, walletID string, limit int32) ([]models.LedgerEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(ledgerByWalletIndex),
		KeyConditionExpression: aws.String("wallet_id = :walletID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":walletID": &types.AttributeValueMemberS{Value: walletID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at_ns in descending order
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query for ledger entries: %w", err)
		}
		items = append(items, page.Items...)
		if limit > 0 && len(items) >= int(limit) {
			items = items[:limit]
			break
		}
	}

	var rows []ledgerItem
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}

	entries := make([]models.LedgerEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toModel()
	}
	return entries, nil
}

// queryAll follows LastEvaluatedKey until the query is exhausted.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func unmarshalPixItems(items []map[string]types.AttributeValue) ([]models.PixTransaction, error) {
	var rows []pixItem
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	transactions := make([]models.PixTransaction, len(rows))
	for i, row := range rows {
		transactions[i] = row.toModel()
	}
	return transactions, nil
}
