package sqldb_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqldb"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqlite"
)

type fixture struct {
	store    *sqlite.Store
	repo     *sqldb.WhiskyRepository
	registry *prometheus.Registry
}

// newFixture открывает файловую SQLite с пулом из maxOpen соединений и готовой схемой.
func newFixture(t *testing.T, maxOpen int) *fixture {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "whisky.db"), sqlite.Options{MaxOpenConns: maxOpen, MaxIdleConns: maxOpen})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(ctx))

	registry := prometheus.NewRegistry()
	repo := sqlite.NewWhiskyRepository(store, metrics.NewStoreMetricsWith(registry), nil)

	return &fixture{store: store, repo: repo, registry: registry}
}

// metricValue возвращает значение счётчика или gauge без label'ов.
func metricValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
		}
	}
	return 0
}

func requireNoConnectionsHeld(t *testing.T, f *fixture) {
	t.Helper()

	require.Zero(t, metricValue(t, f.registry, "whisky_store_connections_in_use"), "connections in use")
	require.Equal(t,
		metricValue(t, f.registry, "whisky_store_connections_acquired_total"),
		metricValue(t, f.registry, "whisky_store_connections_released_total"),
		"every acquired connection must be released",
	)
}
