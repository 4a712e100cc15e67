package storage

// LedgerStore is the accounting side of the data layer: wallets plus their ledger.
type LedgerStore interface {
	WalletStore
	LedgerReader
}

// Storage defines the root interface for the durable data layer.
// Components should depend on the more granular interfaces instead of this one.
type Storage interface {
	LedgerStore
	PixStore
}
