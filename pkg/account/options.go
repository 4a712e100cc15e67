package account

import (
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

type target int

const (
	targetSplit target = iota
	targetBonus
	targetWithdrawable
)

type options struct {
	target     target
	roundID    string
	metadata   map[string]string
	settlement *storage.SettlementGuard
}

// Option customizes a single wallet mutation.
type Option func(*options)

// AsBonus credits the whole amount to the bonus balance.
func AsBonus() Option {
	return func(o *options) { o.target = targetBonus }
}

// ToWithdrawable credits the whole amount to the withdrawable balance.
func ToWithdrawable() Option {
	return func(o *options) { o.target = targetWithdrawable }
}

// WithRoundID tags the ledger entry with a game round.
func WithRoundID(roundID string) Option {
	return func(o *options) { o.roundID = roundID }
}

// WithMetadata adds a key to the ledger entry metadata.
func WithMetadata(key, value string) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]string)
		}
		o.metadata[key] = value
	}
}

// WithSettlement makes the mutation conditional on moving the PIX
// transaction out of pending. Both commit together or not at all.
func WithSettlement(providerTxID string, status models.PixStatus, at time.Time) Option {
	return func(o *options) {
		o.settlement = &storage.SettlementGuard{ProviderTxID: providerTxID, Status: status, At: at}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
