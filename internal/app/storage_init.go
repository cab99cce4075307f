package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/health"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/memory"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/postgres"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqlite"
)

// runtimeDependencies хранит открытое хранилище и построенные поверх него компоненты.
type runtimeDependencies struct {
	repo         domain.WhiskyRepository
	schema       domain.SchemaManager
	storeChecker health.Pinger
	closeFn      func() error
}

func (d runtimeDependencies) close() error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// initRuntimeDependencies открывает хранилище, выбранное в конфигурации.
func initRuntimeDependencies(ctx context.Context, cfg Config, storeMetrics *metrics.StoreMetrics, logger *log.Entry) (runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		repo := memory.NewWhiskyRepository()
		logger.Info("using in-memory storage")
		return runtimeDependencies{
			repo:         repo,
			schema:       repo,
			storeChecker: repo,
			closeFn:      repo.Close,
		}, nil

	case StorageDriverPostgres:
		if cfg.Postgres.DSN == "" {
			return runtimeDependencies{}, fmt.Errorf("postgres dsn is required for storage driver %q", StorageDriverPostgres)
		}
		store, err := postgres.Open(ctx, cfg.Postgres.DSN, postgres.Options{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
		})
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open postgres: %w", err)
		}
		logger.Info("using postgres storage")
		return runtimeDependencies{
			repo:         postgres.NewWhiskyRepository(store, storeMetrics, logger.WithField("layer", "postgres")),
			schema:       store,
			storeChecker: store,
			closeFn:      store.Close,
		}, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.sqliteOptions())
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open sqlite: %w", err)
		}
		logger.WithField("path", store.Path()).Info("using sqlite storage")
		return runtimeDependencies{
			repo:         sqlite.NewWhiskyRepository(store, storeMetrics, logger.WithField("layer", "sqlite")),
			schema:       store,
			storeChecker: store,
			closeFn:      store.Close,
		}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
