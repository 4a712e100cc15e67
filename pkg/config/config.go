// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/account"
	"github.com/chris/pix-wallet-ledger/pkg/gateway"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

// Config holds every setting used by the binaries under cmd/.
type Config struct {
	// --- HTTP ---
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// --- Logging ---
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// --- Storage ---
	// StorageDriver is "dynamodb" or "memory". The memory driver keeps
	// everything in process, snapshots included, and is meant for local runs.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"dynamodb"`
	WalletsTable  string `envconfig:"DYNAMODB_WALLETS_TABLE_NAME"`
	LedgerTable   string `envconfig:"DYNAMODB_LEDGER_TABLE_NAME"`
	PixTable      string `envconfig:"DYNAMODB_PIX_TABLE_NAME"`

	// Webhooks are processed inline when empty.
	WebhookQueueURL string `envconfig:"SQS_WEBHOOK_QUEUE_URL"`

	// --- Redis ---
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SnapshotTTL   time.Duration `envconfig:"SNAPSHOT_TTL" default:"6h"`

	// --- Payment gateway ---
	GatewayBaseURL             string        `envconfig:"GATEWAY_BASE_URL"`
	GatewayToken               string        `envconfig:"GATEWAY_TOKEN"`
	// GatewaySecret is the account secret the provider expects in request bodies.
	GatewaySecret              string        `envconfig:"GATEWAY_SECRET"`
	// GatewaySigningSecret adds X-Timestamp/X-Signature headers to outbound requests when set.
	GatewaySigningSecret       string        `envconfig:"GATEWAY_SIGNING_SECRET"`
	GatewayPostbackURL         string        `envconfig:"GATEWAY_POSTBACK_URL"`
	GatewayWithdrawCallbackURL string        `envconfig:"GATEWAY_WITHDRAW_CALLBACK_URL"`
	GatewayTimeout             time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	GatewayMaxRetries          int           `envconfig:"GATEWAY_MAX_RETRIES" default:"3"`

	// --- Webhooks ---
	// WebhookSecret verifies inbound webhooks from WebhookSignedProviders.
	// Other providers, and every provider when it is empty, are accepted unsigned.
	WebhookSecret             string        `envconfig:"WEBHOOK_SECRET"`
	WebhookSignedProviders    []string      `envconfig:"WEBHOOK_SIGNED_PROVIDERS" default:"canonical"`
	WebhookSignatureTolerance time.Duration `envconfig:"WEBHOOK_SIGNATURE_TOLERANCE" default:"5m"`

	// --- Wallet ---
	CreditBalanceShare     decimal.Decimal `envconfig:"CREDIT_BALANCE_SHARE" default:"0.2"`
	DefaultCurrency        string          `envconfig:"DEFAULT_CURRENCY" default:"BRL"`
	WalletMaxWriteAttempts int             `envconfig:"WALLET_MAX_WRITE_ATTEMPTS" default:"5"`

	// --- PIX expiry ---
	PixPendingMaxAge    time.Duration `envconfig:"PIX_PENDING_MAX_AGE" default:"30m"`
	PixExpirySchedule   string        `envconfig:"PIX_EXPIRY_SCHEDULE" default:"@every 1m"`
	PixExpiryRunTimeout time.Duration `envconfig:"PIX_EXPIRY_RUN_TIMEOUT" default:"50s"`
}

// Validate checks the settings envconfig cannot express with tags.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverDynamoDB:
		if c.WalletsTable == "" || c.LedgerTable == "" || c.PixTable == "" {
			return errors.New("one or more DynamoDB table names are not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.CreditBalanceShare.IsNegative() || c.CreditBalanceShare.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("CREDIT_BALANCE_SHARE must be between 0 and 1, got %s", c.CreditBalanceShare)
	}
	if c.WalletMaxWriteAttempts <= 0 {
		return errors.New("WALLET_MAX_WRITE_ATTEMPTS must be > 0")
	}
	if c.GatewayMaxRetries < 0 {
		return errors.New("GATEWAY_MAX_RETRIES must be >= 0")
	}
	if c.SnapshotTTL <= 0 {
		return errors.New("SNAPSHOT_TTL must be > 0")
	}
	if c.PixPendingMaxAge <= 0 {
		return errors.New("PIX_PENDING_MAX_AGE must be > 0")
	}
	if c.PixExpiryRunTimeout <= 0 {
		return errors.New("PIX_EXPIRY_RUN_TIMEOUT must be > 0")
	}
	if c.WebhookSignatureTolerance <= 0 {
		return errors.New("WEBHOOK_SIGNATURE_TOLERANCE must be > 0")
	}
	if c.WebhookSecret != "" {
		known := gateway.Normalizers()
		for _, p := range c.WebhookSignedProviders {
			if _, ok := known[p]; !ok {
				return fmt.Errorf("WEBHOOK_SIGNED_PROVIDERS names unknown provider %q", p)
			}
		}
	}
	return nil
}

// WebhookVerifiers returns a verifier per signed provider, or nil when no
// webhook secret is configured.
func (c *Config) WebhookVerifiers() map[string]*gateway.Verifier {
	if c.WebhookSecret == "" {
		return nil
	}
	verifiers := make(map[string]*gateway.Verifier, len(c.WebhookSignedProviders))
	for _, p := range c.WebhookSignedProviders {
		verifiers[p] = gateway.NewVerifier(c.WebhookSecret, c.WebhookSignatureTolerance)
	}
	return verifiers
}

// AccountPolicy returns the wallet rules configured for this deployment.
func (c *Config) AccountPolicy() account.Policy {
	p := account.DefaultPolicy()
	p.BalanceShare = c.CreditBalanceShare
	p.DefaultCurrency = c.DefaultCurrency
	p.MaxAttempts = c.WalletMaxWriteAttempts
	return p
}

func (c *Config) Gateway() gateway.Config {
	return gateway.Config{
		BaseURL:             c.GatewayBaseURL,
		Token:               c.GatewayToken,
		Secret:              c.GatewaySecret,
		PostbackURL:         c.GatewayPostbackURL,
		WithdrawCallbackURL: c.GatewayWithdrawCallbackURL,
		Timeout:             c.GatewayTimeout,
		MaxRetries:          c.GatewayMaxRetries,
	}
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
