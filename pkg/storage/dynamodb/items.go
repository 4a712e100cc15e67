package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// amount stores a decimal as a DynamoDB number without going through float64.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.Decimal.String()}, nil
}

func (a *amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		a.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("unsupported attribute type %T for amount", av)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %q: %w", raw, err)
	}
	a.Decimal = d
	return nil
}

type walletItem struct {
	UserID            string    `dynamodbav:"user_id"`
	WalletID          string    `dynamodbav:"wallet_id"`
	Currency          string    `dynamodbav:"currency"`
	Balance           amount    `dynamodbav:"balance"`
	BalanceWithdrawal amount    `dynamodbav:"balance_withdrawal"`
	BalanceBonus      amount    `dynamodbav:"balance_bonus"`
	Version           int64     `dynamodbav:"version"`
	CreatedAt         time.Time `dynamodbav:"created_at"`
	UpdatedAt         time.Time `dynamodbav:"updated_at"`
}

func toWalletItem(w *models.Wallet) walletItem {
	return walletItem{
		UserID:            w.UserID,
		WalletID:          w.ID,
		Currency:          w.Currency,
		Balance:           amount{w.Balance},
		BalanceWithdrawal: amount{w.BalanceWithdrawal},
		BalanceBonus:      amount{w.BalanceBonus},
		Version:           w.Version,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func (i walletItem) toModel() *models.Wallet {
	return &models.Wallet{
		ID:                i.WalletID,
		UserID:            i.UserID,
		Currency:          i.Currency,
		Balance:           i.Balance.Decimal,
		BalanceWithdrawal: i.BalanceWithdrawal.Decimal,
		BalanceBonus:      i.BalanceBonus.Decimal,
		Version:           i.Version,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

type ledgerItem struct {
	EntryID      string            `dynamodbav:"entry_id"`
	WalletID     string            `dynamodbav:"wallet_id"`
	UserID       string            `dynamodbav:"user_id"`
	Type         string            `dynamodbav:"type"`
	Amount       amount            `dynamodbav:"amount"`
	BalanceAfter amount            `dynamodbav:"balance_after"`
	GameRoundID  string            `dynamodbav:"game_round_id,omitempty"`
	Metadata     map[string]string `dynamodbav:"metadata,omitempty"`
	CreatedAt    time.Time         `dynamodbav:"created_at"`
	// CreatedAtNs is the sort key of the per-wallet index. RFC 3339 strings do
	// not sort correctly when trailing zeros are trimmed.
	CreatedAtNs  int64             `dynamodbav:"created_at_ns"`
}

func toLedgerItem(e *models.LedgerEntry) ledgerItem {
	return ledgerItem{
		EntryID:      e.ID,
		WalletID:     e.WalletID,
		UserID:       e.UserID,
		Type:         e.Type,
		Amount:       amount{e.Amount},
		BalanceAfter: amount{e.BalanceAfter},
		GameRoundID:  e.GameRoundID,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
		CreatedAtNs:  e.CreatedAt.UnixNano(),
	}
}

func (i ledgerItem) toModel() models.LedgerEntry {
	return models.LedgerEntry{
		ID:           i.EntryID,
		WalletID:     i.WalletID,
		UserID:       i.UserID,
		Type:         i.Type,
		Amount:       i.Amount.Decimal,
		BalanceAfter: i.BalanceAfter.Decimal,
		GameRoundID:  i.GameRoundID,
		Metadata:     i.Metadata,
		CreatedAt:    i.CreatedAt,
	}
}

type pixItem struct {
	TransactionID  string           `dynamodbav:"transaction_id"`
	ID             string           `dynamodbav:"id"`
	UserID         string           `dynamodbav:"user_id"`
	Type           models.PixType   `dynamodbav:"type"`
	Amount         amount           `dynamodbav:"amount"`
	Status         models.PixStatus `dynamodbav:"status"`
	PixKey         string           `dynamodbav:"pix_key,omitempty"`
	PixKeyType     string           `dynamodbav:"pix_key_type,omitempty"`
	QRCode         string           `dynamodbav:"qr_code,omitempty"`
	QRCodeImageURL string           `dynamodbav:"qr_code_image_url,omitempty"`
	CreatedAt      time.Time        `dynamodbav:"created_at"`
	UpdatedAt      time.Time        `dynamodbav:"updated_at"`
	PaidAt         *time.Time       `dynamodbav:"paid_at,omitempty"`
	// CreatedAtNs is the sort key of the status and user indexes, for the
	// same reason as on ledger items.
	CreatedAtNs    int64            `dynamodbav:"created_at_ns"`
}

func toPixItem(tx *models.PixTransaction) pixItem {
	return pixItem{
		TransactionID:  tx.ProviderTxID,
		ID:             tx.ID,
		UserID:         tx.UserID,
		Type:           tx.Type,
		Amount:         amount{tx.Amount},
		Status:         tx.Status,
		PixKey:         tx.PixKey,
		PixKeyType:     tx.PixKeyType,
		QRCode:         tx.QRCode,
		QRCodeImageURL: tx.QRCodeImageURL,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
		PaidAt:         tx.PaidAt,
		CreatedAtNs:    tx.CreatedAt.UnixNano(),
	}
}

func (i pixItem) toModel() models.PixTransaction {
	return models.PixTransaction{
		ID:             i.ID,
		ProviderTxID:   i.TransactionID,
		UserID:         i.UserID,
		Type:           i.Type,
		Amount:         i.Amount.Decimal,
		Status:         i.Status,
		PixKey:         i.PixKey,
		PixKeyType:     i.PixKeyType,
		QRCode:         i.QRCode,
		QRCodeImageURL: i.QRCodeImageURL,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		PaidAt:         i.PaidAt,
	}
}
