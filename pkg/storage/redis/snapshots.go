// Package redis stores round snapshots in Redis. Expiry is delegated to the
// key TTL and single-use restores rely on GETDEL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chris/pix-wallet-ledger/pkg/models"
	"github.com/chris/pix-wallet-ledger/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "round-snapshot:"

// Client is the subset of *redis.Client used by SnapshotStore.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// SnapshotStore implements storage.SnapshotStore.
type SnapshotStore struct {
	client Client
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(client Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

func snapshotKey(roundID string) string {
	return keyPrefix + roundID
}

// SaveSnapshot stores the snapshot with the given TTL. It fails with
// storage.ErrSnapshotExists if a live snapshot is already stored for the round.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *models.RoundSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ok, err := s.client.SetNX(ctx, snapshotKey(snap.RoundID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save snapshot for round %s: %w", snap.RoundID, err)
	}
	if !ok {
		return fmt.Errorf("round %s: %w", snap.RoundID, storage.ErrSnapshotExists)
	}
	return nil
}

// TakeSnapshot reads and deletes the snapshot in one command so that only
// one caller can restore a round.
func (s *SnapshotStore) TakeSnapshot(ctx context.Context, roundID string) (*models.RoundSnapshot, error) {
	val, err := s.client.GetDel(ctx, snapshotKey(roundID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("round %s: %w", roundID, storage.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take snapshot for round %s: %w", roundID, err)
	}

	var snap models.RoundSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
