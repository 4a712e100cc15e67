package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/config"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/logging"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	dydbstore "github.com/chris/pix-wallet-ledger/pkg/storage/dynamodb"
)

// Expirer cancels pending PIX transactions older than maxAge.
type Expirer interface {
	ExpirePending(ctx context.Context, maxAge time.Duration) (int, error)
}

type handler struct {
	expirer Expirer
	maxAge  time.Duration
	logger  *slog.Logger
}

// HandleRequest is triggered by an EventBridge Schedule.
func (h *handler) HandleRequest(ctx context.Context) error {
	h.logger.InfoContext(ctx, "starting pix expiry sweep", "max_age", h.maxAge.String())

	n, err := h.expirer.ExpirePending(ctx, h.maxAge)
	if err != nil {
		h.logger.ErrorContext(ctx, "pix expiry sweep failed", "expired", n, "error", err)
		return err
	}

	h.logger.InfoContext(ctx, "pix expiry sweep finished", "expired", n)
	return nil
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
	settle := settlement.New(gateway.NewClient(cfg.Gateway(), nil, logger), store, accounts, settlement.Options{}, logger)

	h := &handler{expirer: settle, maxAge: cfg.PixPendingMaxAge, logger: logger.With("component", "reconciliation_lambda")}
	lambda.Start(h.HandleRequest)
}
