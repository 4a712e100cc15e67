package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

//go:generate mockery --name DynamoDBAPI --output ./mocks --outpkg mocks --unroll-variadic=false

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
	WalletsTableName      string
	LedgerTableName       string

	// Now sets the cutoff of GetStuckTransactions.
	Now func() time.Time
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable, walletsTable, ledgerTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
		WalletsTableName:      walletsTable,
		LedgerTableName:       ledgerTable,
		Now:                   func() time.Time { return time.Now().UTC() },
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

const (
	walletIDIndex         = "wallet_id-index"
	ledgerByWalletIndex   = "wallet_id-created_at_ns-index"
	pendingByCreatedIndex = "status-created_at_ns-index"
	userIDIndex           = "user_id-created_at_ns-index"
)
