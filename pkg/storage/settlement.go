package storage

import (
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
)

// SettlementGuard moves a pending PIX transaction to a terminal status. When
// attached to a WalletMutation, the wallet write only commits if the
// transaction is still pending.
type SettlementGuard struct {
	ProviderTxID string
	Status       models.PixStatus
	At           time.Time
}
