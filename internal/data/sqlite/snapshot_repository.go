// Package sqlite stores ledger snapshots in a local sqlite file, for single-node
// deployments and the operator CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

const snapshotTable = "ledger_snapshots"

// SnapshotRepository implements budget.SnapshotRepository on sqlite.
type SnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotRepository wraps a database opened with persistence.OpenSQLite.
func NewSnapshotRepository(logger *slog.Logger, db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger, now: time.Now}
}

func (r *SnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query, args, err := squirrel.Select("value").
		From(snapshotTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot query: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrSnapshotNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load ledger snapshot from sqlite", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	return []byte(value), nil
}

func (r *SnapshotRepository) Save(ctx context.Context, key string, value []byte) error {
	query, args, err := squirrel.Insert(snapshotTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), r.now().UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build snapshot upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save ledger snapshot to sqlite", "key", key, "error", err)
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}
	return nil
}
