package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sqs.SendMessageOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPublishWebhook(t *testing.T) {
	event := models.WebhookEvent{
		Provider:      "feipay",
		TransactionID: "tx-1",
		Status:        models.WebhookPaid,
		Amount:        decimal.RequireFromString("50.00"),
		UserID:        "u1",
	}

	t.Run("Success", func(t *testing.T) {
		client := new(mockSQS)
		var sent *sqs.SendMessageInput
		client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			sent = in
			return aws.ToString(in.QueueUrl) == "https://sqs.local/webhooks"
		})).Return(&sqs.SendMessageOutput{}, nil)

		p := NewSQSPublisher(client, "https://sqs.local/webhooks")
		require.NoError(t, p.PublishWebhook(context.Background(), event))
		client.AssertExpectations(t)

		assert.Equal(t, "tx-1", aws.ToString(sent.MessageAttributes["transaction_id"].StringValue))
		assert.Equal(t, "feipay", aws.ToString(sent.MessageAttributes["provider"].StringValue))

		decoded, err := DecodeWebhook(aws.ToString(sent.MessageBody))
		require.NoError(t, err)
		assert.Equal(t, event.TransactionID, decoded.TransactionID)
		assert.Equal(t, event.Status, decoded.Status)
		assert.True(t, event.Amount.Equal(decoded.Amount))
	})

	t.Run("Send Error", func(t *testing.T) {
		client := new(mockSQS)
		client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		p := NewSQSPublisher(client, "https://sqs.local/webhooks")
		err := p.PublishWebhook(context.Background(), event)
		assert.ErrorContains(t, err, "failed to send webhook event tx-1 to SQS")
	})
}

func TestDecodeWebhook(t *testing.T) {
	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeWebhook("{")
		assert.Error(t, err)
	})

	t.Run("Missing Transaction ID", func(t *testing.T) {
		_, err := DecodeWebhook(`{"status":"paid"}`)
		assert.Error(t, err)
	})
}
