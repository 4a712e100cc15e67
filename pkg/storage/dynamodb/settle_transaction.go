package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

// SettleTransaction moves a pending PIX transaction to the guard's status
// without touching any wallet. The conditional update is what keeps
// concurrent webhook deliveries from applying twice.
func (s *Store) SettleTransaction(ctx context.Context, guard storage.SettlementGuard) error {
	update, err := s.settlementUpdate(guard)
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 update.TableName,
		Key:                       update.Key,
		UpdateExpression:          update.UpdateExpression,
		ConditionExpression:       update.ConditionExpression,
		ExpressionAttributeNames:  update.ExpressionAttributeNames,
		ExpressionAttributeValues: update.ExpressionAttributeValues,
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrAlreadySettled
		}
		return fmt.Errorf("failed to update transaction status to %s: %w", guard.Status, err)
	}

	return nil
}

// settlementUpdate builds the pending -> terminal transition shared by
// SettleTransaction and ApplyMutation.
func (s *Store) settlementUpdate(guard storage.SettlementGuard) (*types.Update, error) {
	if !guard.Status.Terminal() {
		return nil, fmt.Errorf("cannot settle transaction %s to non-terminal status %q", guard.ProviderTxID, guard.Status)
	}

	nowAV, err := attributevalue.Marshal(guard.At)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	expr := "SET #status = :to_status, updated_at = :now"
	if guard.Status == models.PixComplete {
		expr += ", paid_at = :now"
	}

	return &types.Update{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: guard.ProviderTxID},
		},
		UpdateExpression:    aws.String(expr),
		ConditionExpression: aws.String("#status = :pending_status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to_status":      &types.AttributeValueMemberS{Value: string(guard.Status)},
			":pending_status": &types.AttributeValueMemberS{Value: string(models.PixPending)},
			":now":            nowAV,
		},
	}, nil
}
