// Package redis stores ledger snapshots as plain Redis string values.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	goredis "github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis commands the repository needs.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// SnapshotRepository implements budget.SnapshotRepository on Redis.
type SnapshotRepository struct {
	client Client
	prefix string
	logger *slog.Logger
}

// NewSnapshotRepository creates a repository; prefix is prepended to every key.
func NewSnapshotRepository(logger *slog.Logger, client Client, prefix string) budget.SnapshotRepository {
	return &SnapshotRepository{client: client, prefix: prefix, logger: logger}
}

func (r *SnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, budget.ErrSnapshotNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load ledger snapshot from Redis", "key", r.prefix+key, "error", err)
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	return value, nil
}

// Save writes the snapshot without expiry.
func (r *SnapshotRepository) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Error("Failed to save ledger snapshot to Redis", "key", r.prefix+key, "error", err)
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}
	return nil
}
