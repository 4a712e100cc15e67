package websockets

import "github.com/shopspring/decimal"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeWalletUpdate is for messages that update wallet balances.
	MessageTypeWalletUpdate MessageType = "walletUpdate"
)

// Message represents a generic WebSocket message.
type Message struct {
	// UserID selects the recipients. It is not part of the wire format.
	UserID  string      `json:"-"`
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// WalletUpdatePayload is the payload for a walletUpdate message.
type WalletUpdatePayload struct {
	UserID            string          `json:"user_id"`
	WalletID          string          `json:"wallet_id"`
	EntryID           string          `json:"entry_id"`
	EntryType         string          `json:"entry_type"`
	Change            decimal.Decimal `json:"change"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceWithdrawal decimal.Decimal `json:"balance_withdrawal"`
	BalanceBonus      decimal.Decimal `json:"balance_bonus"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
}
