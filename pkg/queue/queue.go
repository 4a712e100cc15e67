// Package queue hands normalized webhook events to the settlement worker.
package queue

import (
	"context"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// WebhookPublisher enqueues a webhook event for asynchronous settlement.
type WebhookPublisher interface {
	PublishWebhook(ctx context.Context, event models.WebhookEvent) error
}
