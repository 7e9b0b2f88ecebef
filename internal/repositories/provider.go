// Package repositories selects the ledger store configured by STORAGE_DRIVER.
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
	"github.com/SscSPs/koperasi_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/koperasi_ledger/internal/repositories/memory"
	"github.com/SscSPs/koperasi_ledger/pkg/database"
)

// Open builds the repository provider for cfg.StorageDriver. The postgres
// driver migrates the schema first and the memory driver starts from the
// baseline chart of accounts. The returned func releases the store.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory ledger store")
		store := memory.NewStore()
		if err := store.Seed(ctx, memory.BaselineChart(time.Now())); err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("seed chart of accounts: %w", err)
		}
		return memory.NewRepositoryProvider(store), func() {}, nil

	case config.StorageDriverPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	}
	return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
