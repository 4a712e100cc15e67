package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/config"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/logging"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/queue"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	dydbstore "github.com/chris/pix-wallet-ledger/pkg/storage/dynamodb"
)

// WebhookProcessor applies one normalized webhook.
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, event models.WebhookEvent) (bool, error)
}

type handler struct {
	processor WebhookProcessor
	logger    *slog.Logger
}

// HandleRequest settles each queued webhook. Only messages that hit a
// transient failure are reported back, so SQS redelivers just those.
func (h *handler) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, message := range sqsEvent.Records {
		log := h.logger.With("message_id", message.MessageId)

		event, err := queue.DecodeWebhook(message.Body)
		if err != nil {
			// A malformed body will never succeed, so it is acked.
			log.ErrorContext(ctx, "dropping undecodable webhook message", "error", err)
			continue
		}
		log = log.With("transaction_id", event.TransactionID)

		applied, err := h.processor.ProcessWebhook(ctx, event)
		switch {
		case errors.Is(err, settlement.ErrWebhookMismatch):
			log.WarnContext(ctx, "webhook rejected", "error", err)
		case err != nil:
			log.ErrorContext(ctx, "failed to process webhook, will retry", "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		default:
			log.InfoContext(ctx, "webhook processed", "applied", applied)
		}
	}

	return resp, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("unable to load SDK config", "error", err)
		os.Exit(1)
	}

	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), cfg.PixTable, cfg.WalletsTable, cfg.LedgerTable)
	accounts := account.New(store, nil, cfg.AccountPolicy(), logger)
	// Webhook processing never calls the provider.
	settle := settlement.New(gateway.NewClient(cfg.Gateway(), nil, logger), store, accounts, settlement.Options{}, logger)

	h := &handler{processor: settle, logger: logger.With("component", "settlement_lambda")}
	lambda.Start(h.HandleRequest)
}
