// Package memory provides a process-local implementation of the storage
// interfaces. It follows the same compare-and-swap rules as the DynamoDB
// store and backs local runs and service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
)

type snapshotEntry struct {
	snap      models.RoundSnapshot
	expiresAt time.Time
}

// Store keeps wallets, ledger entries, PIX transactions and round snapshots in maps.
type Store struct {
	mu        sync.RWMutex
	wallets   map[string]models.Wallet // by user ID
	walletIDs map[string]string        // wallet ID -> user ID
	ledger    map[string][]models.LedgerEntry
	entryIDs  map[string]struct{}
	txs       map[string]models.PixTransaction // by provider transaction ID
	snapshots map[string]snapshotEntry

	// Now is used for snapshot expiry and stuck-transaction cutoffs.
	Now func() time.Time
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.SnapshotStore = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		wallets:   make(map[string]models.Wallet),
		walletIDs: make(map[string]string),
		ledger:    make(map[string][]models.LedgerEntry),
		entryIDs:  make(map[string]struct{}),
		txs:       make(map[string]models.PixTransaction),
		snapshots: make(map[string]snapshotEntry),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrWalletNotFound)
	}
	return &w, nil
}

func (s *Store) GetWalletByID(ctx context.Context, walletID string) (*models.Wallet, error) {
	s.mu.RLock()
	userID, ok := s.walletIDs[walletID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", walletID, storage.ErrWalletNotFound)
	}
	return s.GetWallet(ctx, userID)
}

func (s *Store) CreateWallet(_ context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wallets[wallet.UserID]; ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", wallet.UserID, storage.ErrWalletExists)
	}
	s.wallets[wallet.UserID] = *wallet
	s.walletIDs[wallet.ID] = wallet.UserID
	return wallet, nil
}

func (s *Store) ApplyMutation(_ context.Context, m *storage.WalletMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := m.Wallet
	current, ok := s.wallets[w.UserID]
	if !ok || current.Version != w.Version {
		return fmt.Errorf("wallet for user ID %s: %w", w.UserID, storage.ErrVersionConflict)
	}
	if _, dup := s.entryIDs[m.Entry.ID]; dup {
		return fmt.Errorf("ledger entry %s already exists", m.Entry.ID)
	}

	var settled *models.PixTransaction
	if g := m.Settlement; g != nil {
		tx, err := s.settle(*g)
		if err != nil {
			return err
		}
		settled = tx
	}

	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = s.Now()
	}
	w.Version++

	s.wallets[w.UserID] = *w
	s.entryIDs[m.Entry.ID] = struct{}{}
	s.ledger[w.ID] = append(s.ledger[w.ID], *m.Entry)
	if settled != nil {
		s.txs[settled.ProviderTxID] = *settled
	}
	return nil
}

func (s *Store) ListLedgerEntries(_ context.Context, walletID string, limit int32) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]models.LedgerEntry(nil), s.ledger[walletID]...)
	// Stable sort keeps insertion order for entries sharing a timestamp.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > int(limit) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *models.PixTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[tx.ProviderTxID]; ok {
		return fmt.Errorf("transaction %s: %w", tx.ProviderTxID, storage.ErrPixTransactionExists)
	}
	s.txs[tx.ProviderTxID] = *tx
	return nil
}

func (s *Store) GetTransaction(_ context.Context, providerTxID string) (*models.PixTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[providerTxID]
	if !ok {
		return nil, fmt.Errorf("transaction with ID %s: %w", providerTxID, storage.ErrPixTransactionNotFound)
	}
	return &tx, nil
}

func (s *Store) GetStuckTransactions(_ context.Context, maxAge time.Duration) ([]models.PixTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.Now().Add(-maxAge)
	var stuck []models.PixTransaction
	for _, tx := range s.txs {
		if tx.Status == models.PixPending && tx.CreatedAt.Before(cutoff) {
			stuck = append(stuck, tx)
		}
	}
	sort.Slice(stuck, func(i, j int) bool { return stuck[i].CreatedAt.Before(stuck[j].CreatedAt) })
	return stuck, nil
}

func (s *Store) ListTransactionsByUserID(_ context.Context, userID string) ([]models.PixTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []models.PixTransaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}

func (s *Store) SettleTransaction(_ context.Context, guard storage.SettlementGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.settle(guard)
	if err != nil {
		return err
	}
	s.txs[tx.ProviderTxID] = *tx
	return nil
}

// settle computes the transition without writing it. Callers hold the lock.
func (s *Store) settle(g storage.SettlementGuard) (*models.PixTransaction, error) {
	if !g.Status.Terminal() {
		return nil, fmt.Errorf("cannot settle transaction %s to non-terminal status %q", g.ProviderTxID, g.Status)
	}
	tx, ok := s.txs[g.ProviderTxID]
	if !ok || tx.Status != models.PixPending {
		// Mirrors the conditional check on the DynamoDB item, which fails for
		// missing items as well.
		return nil, storage.ErrAlreadySettled
	}
	tx.Status = g.Status
	tx.UpdatedAt = g.At
	if g.Status == models.PixComplete {
		at := g.At
		tx.PaidAt = &at
	}
	return &tx, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap *models.RoundSnapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if e, ok := s.snapshots[snap.RoundID]; ok && now.Before(e.expiresAt) {
		return fmt.Errorf("round %s: %w", snap.RoundID, storage.ErrSnapshotExists)
	}
	s.snapshots[snap.RoundID] = snapshotEntry{snap: *snap, expiresAt: now.Add(ttl)}
	return nil
}

func (s *Store) TakeSnapshot(_ context.Context, roundID string) (*models.RoundSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.snapshots[roundID]
	delete(s.snapshots, roundID)
	if !ok || !s.Now().Before(e.expiresAt) {
		return nil, fmt.Errorf("round %s: %w", roundID, storage.ErrSnapshotNotFound)
	}
	return &e.snap, nil
}
