package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTables(t *testing.T) {
	t.Setenv("DYNAMODB_WALLETS_TABLE_NAME", "wallets")
	t.Setenv("DYNAMODB_LEDGER_TABLE_NAME", "ledger")
	t.Setenv("DYNAMODB_PIX_TABLE_NAME", "pix")
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setTables(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, DriverDynamoDB, cfg.StorageDriver)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 6*time.Hour, cfg.SnapshotTTL)
		assert.Equal(t, 30*time.Minute, cfg.PixPendingMaxAge)
		assert.Equal(t, "@every 1m", cfg.PixExpirySchedule)
		assert.True(t, cfg.CreditBalanceShare.Equal(decimal.RequireFromString("0.2")))
		assert.Empty(t, cfg.WebhookQueueURL)

		policy := cfg.AccountPolicy()
		assert.Equal(t, 5, policy.MaxAttempts)
		assert.Equal(t, "BRL", policy.DefaultCurrency)
	})

	t.Run("Overrides", func(t *testing.T) {
		setTables(t)
		t.Setenv("CREDIT_BALANCE_SHARE", "0.35")
		t.Setenv("GATEWAY_TIMEOUT", "3s")
		t.Setenv("SQS_WEBHOOK_QUEUE_URL", "https://sqs.local/webhooks")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.AccountPolicy().BalanceShare.Equal(decimal.RequireFromString("0.35")))
		assert.Equal(t, 3*time.Second, cfg.Gateway().Timeout)
		assert.Equal(t, "https://sqs.local/webhooks", cfg.WebhookQueueURL)
	})

	t.Run("Missing Table", func(t *testing.T) {
		t.Setenv("DYNAMODB_WALLETS_TABLE_NAME", "wallets")
		t.Setenv("DYNAMODB_LEDGER_TABLE_NAME", "ledger")
		t.Setenv("DYNAMODB_PIX_TABLE_NAME", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Memory Driver Needs No Tables", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("DYNAMODB_WALLETS_TABLE_NAME", "")
		t.Setenv("DYNAMODB_LEDGER_TABLE_NAME", "")
		t.Setenv("DYNAMODB_PIX_TABLE_NAME", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, cfg.StorageDriver)
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		setTables(t)
		t.Setenv("STORAGE_DRIVER", "postgres")

		_, err := Load()
		assert.ErrorContains(t, err, "STORAGE_DRIVER")
	})

	t.Run("Share Out Of Range", func(t *testing.T) {
		setTables(t)
		t.Setenv("CREDIT_BALANCE_SHARE", "1.5")

		_, err := Load()
		assert.ErrorContains(t, err, "CREDIT_BALANCE_SHARE")
	})

	t.Run("Gateway Secrets Are Independent", func(t *testing.T) {
		setTables(t)
		t.Setenv("GATEWAY_SECRET", "feipay-account-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "feipay-account-secret", cfg.Gateway().Secret)
		assert.Empty(t, cfg.GatewaySigningSecret)
		assert.Nil(t, cfg.WebhookVerifiers(), "the provider body secret must not turn on webhook signatures")
	})

	t.Run("Webhook Verifiers Per Provider", func(t *testing.T) {
		setTables(t)
		t.Setenv("WEBHOOK_SECRET", "hook")

		cfg, err := Load()
		require.NoError(t, err)
		verifiers := cfg.WebhookVerifiers()
		assert.Contains(t, verifiers, "canonical")
		assert.NotContains(t, verifiers, "feipay")
	})

	t.Run("Unknown Signed Provider", func(t *testing.T) {
		setTables(t)
		t.Setenv("WEBHOOK_SECRET", "hook")
		t.Setenv("WEBHOOK_SIGNED_PROVIDERS", "canonical,acme")

		_, err := Load()
		assert.ErrorContains(t, err, "acme")
	})
}
