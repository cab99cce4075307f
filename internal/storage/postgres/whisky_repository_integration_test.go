package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
)

func TestWhiskyRepository_PostgresCRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewWhiskyRepository(store, metrics.NewStoreMetricsWith(prometheus.NewRegistry()), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := repo.Insert(ctx, domain.Whisky{Name: "Lagavulin 16", Origin: "Scotland, Islay"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected first id after truncate to be 1, got %d", created.ID)
	}

	fetched, err := repo.Fetch(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched != created {
		t.Fatalf("fetched %+v, want %+v", fetched, created)
	}

	updated, err := repo.Update(ctx, created.ID, domain.Whisky{Name: "Lagavulin 8", Origin: "Scotland, Islay"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Lagavulin 8" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := repo.Update(ctx, 999, domain.Whisky{Name: "x", Origin: "y"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on update of missing id, got %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if _, err := repo.Fetch(ctx, created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestWhiskyRepository_PostgresRejectsLongName(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewWhiskyRepository(store, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.Insert(ctx, domain.Whisky{Name: strings.Repeat("a", domain.MaxFieldLength+1), Origin: "Scotland"})
	if !domain.IsQuery(err) {
		t.Fatalf("expected query error, got %v", err)
	}

	var queryErr *domain.QueryError
	if !errors.As(err, &queryErr) || queryErr.Code == "" {
		t.Fatalf("expected sqlstate on query error, got %+v", err)
	}
}
