package sqldb_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqldb"
)

func newProvider(t *testing.T, f *fixture) *sqldb.Provider {
	t.Helper()
	return sqldb.NewProvider(f.store.DB(), metrics.NewStoreMetricsWith(f.registry), nil)
}

func TestProvider_ReleaseIsIdempotent(t *testing.T) {
	f := newFixture(t, 1)
	provider := newProvider(t, f)

	handle, err := provider.Acquire(context.Background(), "test")
	require.NoError(t, err)
	require.NotNil(t, handle.Conn())
	require.Equal(t, float64(1), metricValue(t, f.registry, "whisky_store_connections_in_use"))

	require.NoError(t, handle.Release())
	require.NoError(t, handle.Release())

	require.Equal(t, float64(1), metricValue(t, f.registry, "whisky_store_connections_released_total"))
	requireNoConnectionsHeld(t, f)
}

func TestProvider_AcquireBlocksUntilContextDone(t *testing.T) {
	f := newFixture(t, 1)
	provider := newProvider(t, f)

	held, err := provider.Acquire(context.Background(), "holder")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = provider.Acquire(ctx, "waiter")
	require.True(t, domain.IsConnection(err), "got %v", err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Release())

	next, err := provider.Acquire(context.Background(), "after-release")
	require.NoError(t, err)
	require.NoError(t, next.Release())
}

func TestProvider_WithConnReleasesOnErrorAndPanic(t *testing.T) {
	f := newFixture(t, 1)
	provider := newProvider(t, f)
	ctx := context.Background()

	boom := errors.New("boom")
	err := provider.WithConn(ctx, "failing", func(ctx context.Context, conn *sql.Conn) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	requireNoConnectionsHeld(t, f)

	require.Panics(t, func() {
		_ = provider.WithConn(ctx, "panicking", func(ctx context.Context, conn *sql.Conn) error {
			panic("unexpected")
		})
	})
	requireNoConnectionsHeld(t, f)

	err = provider.WithConn(ctx, "ok", func(ctx context.Context, conn *sql.Conn) error {
		var one int
		return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
	require.NoError(t, err)
	requireNoConnectionsHeld(t, f)
}

func TestProvider_UninitializedReturnsConnectionError(t *testing.T) {
	provider := sqldb.NewProvider(nil, metrics.NewStoreMetricsWith(prometheus.NewRegistry()), nil)

	_, err := provider.Acquire(context.Background(), "list")
	require.True(t, domain.IsConnection(err), "got %v", err)
	require.Error(t, provider.Ping(context.Background()))

	var nilProvider *sqldb.Provider
	_, err = nilProvider.Acquire(context.Background(), "list")
	require.True(t, domain.IsConnection(err))
}
