package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// SQSAPI is the subset of the SQS client used by SQSPublisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher implements the WebhookPublisher interface using AWS SQS.
type SQSPublisher struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSPublisher creates a new SQSPublisher.
func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ WebhookPublisher = (*SQSPublisher)(nil)

// PublishWebhook sends the event to the settlement queue.
func (p *SQSPublisher) PublishWebhook(ctx context.Context, event models.WebhookEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event for SQS: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"transaction_id": {DataType: aws.String("String"), StringValue: aws.String(event.TransactionID)},
		},
	}
	if event.Provider != "" {
		input.MessageAttributes["provider"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(event.Provider)}
	}

	if _, err := p.Client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send webhook event %s to SQS: %w", event.TransactionID, err)
	}

	return nil
}

// DecodeWebhook parses a message body written by PublishWebhook.
func DecodeWebhook(body string) (models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return models.WebhookEvent{}, fmt.Errorf("failed to unmarshal webhook event: %w", err)
	}
	if event.TransactionID == "" {
		return models.WebhookEvent{}, fmt.Errorf("webhook event has no transaction ID")
	}
	return event, nil
}
