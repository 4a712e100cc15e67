package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/config"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/chris/pix-wallet-ledger/pkg/handlers"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/ledger"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/pix"
	roundshandler "github.com/chris/pix-wallet-ledger/pkg/handlers/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/handlers/wallets"
	wshandler "github.com/chris/pix-wallet-ledger/pkg/handlers/websockets"
	"github.com/chris/pix-wallet-ledger/pkg/jobs"
	"github.com/chris/pix-wallet-ledger/pkg/logging"
	"github.com/chris/pix-wallet-ledger/pkg/queue"
	"github.com/chris/pix-wallet-ledger/pkg/rounds"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	dydbstore "github.com/chris/pix-wallet-ledger/pkg/storage/dynamodb"
	"github.com/chris/pix-wallet-ledger/pkg/storage/memory"
	redisstore "github.com/chris/pix-wallet-ledger/pkg/storage/redis"
	"github.com/chris/pix-wallet-ledger/pkg/websockets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		store     storage.Storage
		snapshots storage.SnapshotStore
		webhooks  queue.WebhookPublisher
	)

	switch cfg.StorageDriver {
	case config.DriverMemory:
		mem := memory.New()
		store, snapshots = mem, mem
		logger.Warn("using in-memory storage, data is lost on exit")
	default:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return err
		}
		store = dydbstore.New(dynamodb.NewFromConfig(awsCfg), cfg.PixTable, cfg.WalletsTable, cfg.LedgerTable)

		redisClient, err := redisstore.NewClient(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		snapshots = redisstore.NewSnapshotStore(redisClient)

		if cfg.WebhookQueueURL != "" {
			webhooks = queue.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.WebhookQueueURL)
		}
	}

	hub := websockets.NewHub(logger)
	accounts := account.New(store, hub, cfg.AccountPolicy(), logger)
	roundSvc := rounds.New(accounts, snapshots, cfg.SnapshotTTL, logger)

	var signer gateway.Signer
	if cfg.GatewaySigningSecret != "" {
		signer = gateway.HMACSigner(cfg.GatewaySigningSecret)
	}
	gw := gateway.NewClient(cfg.Gateway(), signer, logger)
	settle := settlement.New(gw, store, accounts, settlement.Options{}, logger)

	expiry, err := jobs.NewScheduler(settle, jobs.Config{
		Schedule:   cfg.PixExpirySchedule,
		MaxAge:     cfg.PixPendingMaxAge,
		RunTimeout: cfg.PixExpiryRunTimeout,
	}, logger)
	if err != nil {
		return err
	}
	expiry.Start()
	defer expiry.Stop()

	apiHandler := handlers.NewApiHandler(
		wallets.NewWalletsHandler(accounts),
		ledger.NewLedgerHandler(accounts),
		roundshandler.NewRoundsHandler(roundSvc),
		pix.NewPixHandler(settle, gateway.Normalizers(), webhooks, cfg.WebhookVerifiers(), logger),
	)
	router := handlers.NewRouter(apiHandler, wshandler.NewHandler(hub, logger), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
