package mapping

import (
	"github.com/chris/pix-wallet-ledger/pkg/api"
	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/settlement"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) *api.Wallet {
	return &api.Wallet{
		Id:                toUUID(wallet.ID),
		UserId:            wallet.UserID,
		Currency:          wallet.Currency,
		Balance:           wallet.Balance,
		BalanceWithdrawal: wallet.BalanceWithdrawal,
		BalanceBonus:      wallet.BalanceBonus,
		TotalBalance:      wallet.Total(),
		Version:           wallet.Version,
		UpdatedAt:         wallet.UpdatedAt,
	}
}

// ToApiLedgerEntry converts a domain LedgerEntry model to an API LedgerEntry model.
func ToApiLedgerEntry(entry *models.LedgerEntry) *api.LedgerEntry {
	apiEntry := &api.LedgerEntry{
		Id:           entry.ID,
		WalletId:     toUUID(entry.WalletID),
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.GameRoundID != "" {
		apiEntry.GameRoundId = &entry.GameRoundID
	}
	if len(entry.Metadata) > 0 {
		md := entry.Metadata
		apiEntry.Metadata = &md
	}
	return apiEntry
}

// ToApiPixTransaction converts a domain PixTransaction model to an API PixTransaction model.
// The QR code is only returned when the deposit is initiated.
func ToApiPixTransaction(tx *models.PixTransaction) *api.PixTransaction {
	return &api.PixTransaction{
		Id:            tx.ID,
		TransactionId: tx.ProviderTxID,
		Type:          api.PixTransactionType(tx.Type),
		Amount:        tx.Amount,
		Status:        api.PixTransactionStatus(tx.Status),
		CreatedAt:     tx.CreatedAt,
		PaidAt:        tx.PaidAt,
	}
}

// ToApiRoundSnapshot converts a domain RoundSnapshot model to an API RoundSnapshot model.
func ToApiRoundSnapshot(snap *models.RoundSnapshot) *api.RoundSnapshot {
	return &api.RoundSnapshot{
		RoundId:           snap.RoundID,
		WalletId:          toUUID(snap.WalletID),
		Balance:           snap.Balance,
		BalanceWithdrawal: snap.BalanceWithdrawal,
		BalanceBonus:      snap.BalanceBonus,
		CreatedAt:         snap.CreatedAt,
	}
}

// ToApiDeposit converts a settlement DepositReference to an API Deposit model.
func ToApiDeposit(ref *settlement.DepositReference) *api.Deposit {
	d := &api.Deposit{
		TransactionId: ref.ProviderTxID,
		Amount:        ref.Amount,
		QrCode:        ref.QRCode,
	}
	if ref.QRCodeImageURL != "" {
		d.QrImage = &ref.QRCodeImageURL
	}
	return d
}

// ToApiWithdrawal converts a settlement WithdrawalReference to an API Withdrawal model.
func ToApiWithdrawal(ref *settlement.WithdrawalReference) *api.Withdrawal {
	return &api.Withdrawal{
		TransactionId: ref.ProviderTxID,
		Amount:        ref.Amount,
		Status:        string(ref.Status),
		Wallet:        *ToApiWallet(ref.Wallet),
	}
}

// ToDomainPayer converts an API NewDeposit model to the payer details sent to the gateway.
func ToDomainPayer(d *api.NewDeposit) settlement.Payer {
	return settlement.Payer{
		Name:     deref(d.Name),
		Email:    deref(d.Email),
		Document: deref(d.Document),
		Phone:    deref(d.Phone),
	}
}

func toUUID(id string) openapi_types.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
