package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/platform/persistence"
)

// SnapshotRepository stores ledger snapshots in the ledger_snapshots table.
type SnapshotRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSnapshotRepository creates a new PostgreSQL snapshot repository
func NewSnapshotRepository(logger *slog.Logger, db *persistence.PostgresDB) budget.SnapshotRepository {
	return &SnapshotRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Load returns the JSON document stored under key.
func (r *SnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM ledger_snapshots
		WHERE key = $1
	`

	var value []byte
	err := r.querier.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, budget.ErrSnapshotNotFound
		}
		r.logger.Error("Failed to load ledger snapshot", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	return value, nil
}

// Save upserts the JSON document under key.
func (r *SnapshotRepository) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO ledger_snapshots (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.querier.Exec(ctx, query, key, value, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to save ledger snapshot", "key", key, "error", err)
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	return nil
}
