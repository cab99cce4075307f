package bootstrap_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/service/bootstrap"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/memory"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqlite"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return logger.WithField("component", "bootstrap-test")
}

// stubStore позволяет уронить отдельный шаг подготовки.
type stubStore struct {
	*memory.WhiskyRepository

	schemaErr error
	countErr  error
	insertErr error
	failAfter int

	schemaCalls int
	inserts     int
}

func (s *stubStore) EnsureSchema(ctx context.Context) error {
	s.schemaCalls++
	if s.schemaErr != nil {
		return s.schemaErr
	}
	return s.WhiskyRepository.EnsureSchema(ctx)
}

func (s *stubStore) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.WhiskyRepository.Count(ctx)
}

func (s *stubStore) Insert(ctx context.Context, w domain.Whisky) (domain.Whisky, error) {
	if s.insertErr != nil && s.inserts >= s.failAfter {
		return domain.Whisky{}, s.insertErr
	}
	s.inserts++
	return s.WhiskyRepository.Insert(ctx, w)
}

func TestRun_SeedsEmptyStoreInOrder(t *testing.T) {
	repo := memory.NewWhiskyRepository()

	result, err := bootstrap.Run(context.Background(), repo, repo, quietLogger())
	require.NoError(t, err)
	require.True(t, result.Seeded)
	require.Len(t, result.Created, 2)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Bowmore 15 Years Laimrig", list[0].Name)
	require.Equal(t, "Scotland, Islay", list[0].Origin)
	require.Equal(t, "Talisker 57° North", list[1].Name)
	require.Equal(t, "Scotland, Island", list[1].Origin)
	require.Less(t, list[0].ID, list[1].ID)
}

func TestRun_IsIdempotent(t *testing.T) {
	repo := memory.NewWhiskyRepository()
	ctx := context.Background()

	_, err := bootstrap.Run(ctx, repo, repo, quietLogger())
	require.NoError(t, err)

	second, err := bootstrap.Run(ctx, repo, repo, quietLogger())
	require.NoError(t, err)
	require.False(t, second.Seeded)
	require.Empty(t, second.Created)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRun_SkipsSeedWhenUserDataPresent(t *testing.T) {
	repo := memory.NewWhiskyRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, domain.Whisky{Name: "Ardbeg 10", Origin: "Scotland, Islay"})
	require.NoError(t, err)

	result, err := bootstrap.Run(ctx, repo, repo, nil)
	require.NoError(t, err)
	require.False(t, result.Seeded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRun_StopsOnFirstFailure(t *testing.T) {
	boom := &domain.QueryError{Op: "insert", Err: errors.New("boom")}

	tests := []struct {
		name        string
		store       *stubStore
		wantInserts int
	}{
		{
			name:  "schema",
			store: &stubStore{schemaErr: &domain.ConnectionError{Op: "ensure_schema", Err: errors.New("down")}},
		},
		{
			name:  "count",
			store: &stubStore{countErr: &domain.QueryError{Op: "count", Err: errors.New("no table")}},
		},
		{
			name:  "first seed",
			store: &stubStore{insertErr: boom},
		},
		{
			name:        "second seed",
			store:       &stubStore{insertErr: boom, failAfter: 1},
			wantInserts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.WhiskyRepository = memory.NewWhiskyRepository()

			result, err := bootstrap.Run(context.Background(), tt.store, tt.store, quietLogger())
			require.Error(t, err)
			require.False(t, result.Seeded)
			require.Equal(t, 1, tt.store.schemaCalls)
			require.Equal(t, tt.wantInserts, tt.store.inserts)
		})
	}
}

func TestRun_ErrorKeepsClassification(t *testing.T) {
	store := &stubStore{
		WhiskyRepository: memory.NewWhiskyRepository(),
		countErr:         &domain.ConnectionError{Op: "count", Err: errors.New("refused")},
	}

	_, err := bootstrap.Run(context.Background(), store, store, quietLogger())
	require.True(t, domain.IsConnection(err), "got %v", err)
}

func TestRun_SQLiteTwiceDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "bootstrap.db"), sqlite.Options{MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()
	repo := sqlite.NewWhiskyRepository(store, nil, nil)

	first, err := bootstrap.Run(ctx, store, repo, quietLogger())
	require.NoError(t, err)
	require.True(t, first.Seeded)
	require.Equal(t, int64(1), first.Created[0].ID)
	require.Equal(t, int64(2), first.Created[1].ID)

	second, err := bootstrap.Run(ctx, store, repo, quietLogger())
	require.NoError(t, err)
	require.False(t, second.Seeded)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
