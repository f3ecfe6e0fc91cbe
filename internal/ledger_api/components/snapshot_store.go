package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/data/memory"
	"github.com/omnitrip-budget-ledger/internal/data/postgres"
	redisdata "github.com/omnitrip-budget-ledger/internal/data/redis"
	"github.com/omnitrip-budget-ledger/internal/data/sqlite"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/platform/persistence"
)

// OpenSnapshotRepository opens the snapshot backend named by STORAGE_BACKEND.
// pg is reused for the postgres backend when the caller already holds a pool;
// otherwise a pool is opened and closed by the returned func.
func OpenSnapshotRepository(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	pg *persistence.PostgresDB,
) (budget.SnapshotRepository, func(), error) {
	logger = logger.With("component", "snapshot_store", "backend", cfg.Storage.Backend)

	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		closeFn := func() {}
		if pg == nil {
			db, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open postgres snapshot store: %w", err)
			}
			pg, closeFn = db, db.Close
		}
		logger.Info("Using PostgreSQL snapshot store")
		return postgres.NewSnapshotRepository(logger, pg), closeFn, nil

	case config.StorageBackendRedis:
		client, err := persistence.NewRedisClient(ctx, logger, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis snapshot store: %w", err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing Redis client", "error", err)
			}
		}
		logger.Info("Using Redis snapshot store", "key_prefix", cfg.Storage.KeyPrefix)
		return redisdata.NewSnapshotRepository(logger, client, cfg.Storage.KeyPrefix), closeFn, nil

	case config.StorageBackendSQLite:
		db, err := persistence.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite snapshot store: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing SQLite database", "error", err)
			}
		}
		logger.Info("Using SQLite snapshot store", "path", cfg.SQLite.Path)
		return sqlite.NewSnapshotRepository(logger, db), closeFn, nil

	case config.StorageBackendMemory:
		logger.Warn("Using in-memory snapshot store, state is lost on restart")
		return memory.NewSnapshotRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
