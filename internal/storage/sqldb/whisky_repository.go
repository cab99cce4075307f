package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
)

const (
	opList   = "list"
	opInsert = "insert"
	opFetch  = "fetch"
	opUpdate = "update"
	opDelete = "delete"
	opCount  = "count"
)

// WhiskyRepository реализует domain.WhiskyRepository поверх database/sql.
// Каждая операция берёт собственное соединение у Provider; кэша между вызовами нет.
type WhiskyRepository struct {
	provider *Provider
	dialect  Dialect
	metrics  *metrics.StoreMetrics
}

// NewWhiskyRepository создаёт репозиторий для указанного диалекта.
func NewWhiskyRepository(provider *Provider, dialect Dialect, storeMetrics *metrics.StoreMetrics) *WhiskyRepository {
	return &WhiskyRepository{provider: provider, dialect: dialect, metrics: storeMetrics}
}

func (r *WhiskyRepository) List(ctx context.Context) ([]domain.Whisky, error) {
	start := time.Now()
	whiskies := make([]domain.Whisky, 0)

	err := r.provider.WithConn(ctx, opList, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.dialect.list)
		if err != nil {
			return r.queryError(opList, err)
		}
		defer rows.Close()

		for rows.Next() {
			var w domain.Whisky
			if err := rows.Scan(&w.ID, &w.Name, &w.Origin); err != nil {
				return r.queryError(opList, fmt.Errorf("scan whisky row: %w", err))
			}
			whiskies = append(whiskies, w)
		}
		if err := rows.Err(); err != nil {
			return r.queryError(opList, fmt.Errorf("iterate whisky rows: %w", err))
		}
		return nil
	})
	r.observe(opList, start, err)
	if err != nil {
		return nil, err
	}

	return whiskies, nil
}

func (r *WhiskyRepository) Insert(ctx context.Context, w domain.Whisky) (domain.Whisky, error) {
	start := time.Now()
	stored := domain.Whisky{Name: w.Name, Origin: w.Origin}

	err := r.provider.WithConn(ctx, opInsert, func(ctx context.Context, conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, r.dialect.insert, w.Name, w.Origin).Scan(&stored.ID); err != nil {
			return r.queryError(opInsert, err)
		}
		return nil
	})
	r.observe(opInsert, start, err)
	if err != nil {
		return domain.Whisky{}, err
	}

	return stored, nil
}

func (r *WhiskyRepository) Fetch(ctx context.Context, id int64) (domain.Whisky, error) {
	start := time.Now()
	var w domain.Whisky

	err := r.provider.WithConn(ctx, opFetch, func(ctx context.Context, conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx, r.dialect.fetch, id).Scan(&w.ID, &w.Name, &w.Origin)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrWhiskyNotFound
			}
			return r.queryError(opFetch, err)
		}
		return nil
	})
	r.observe(opFetch, start, err)
	if err != nil {
		return domain.Whisky{}, err
	}

	return w, nil
}

// Update не перечитывает строку: результат собирается из id и входных полей.
func (r *WhiskyRepository) Update(ctx context.Context, id int64, w domain.Whisky) (domain.Whisky, error) {
	start := time.Now()

	err := r.provider.WithConn(ctx, opUpdate, func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, r.dialect.update, w.Name, w.Origin, id)
		if err != nil {
			return r.queryError(opUpdate, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return r.queryError(opUpdate, fmt.Errorf("rows affected: %w", err))
		}
		if affected == 0 {
			return domain.ErrWhiskyNotFound
		}
		return nil
	})
	r.observe(opUpdate, start, err)
	if err != nil {
		return domain.Whisky{}, err
	}

	return domain.Whisky{ID: id, Name: w.Name, Origin: w.Origin}, nil
}

// Delete не различает «строка удалена» и «строки не было».
func (r *WhiskyRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	err := r.provider.WithConn(ctx, opDelete, func(ctx context.Context, conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, r.dialect.delete, id); err != nil {
			return r.queryError(opDelete, err)
		}
		return nil
	})
	r.observe(opDelete, start, err)
	return err
}

func (r *WhiskyRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var count int

	err := r.provider.WithConn(ctx, opCount, func(ctx context.Context, conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, r.dialect.count).Scan(&count); err != nil {
			return r.queryError(opCount, err)
		}
		return nil
	})
	r.observe(opCount, start, err)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *WhiskyRepository) observe(op string, start time.Time, err error) {
	r.metrics.RecordOperation(op, outcomeOf(err), time.Since(start))
}

func (r *WhiskyRepository) queryError(op string, err error) error {
	return &domain.QueryError{Op: op, Code: r.dialect.errorCode(err), Err: err}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case domain.IsNotFound(err):
		return metrics.OutcomeNotFound
	case domain.IsConnection(err):
		return metrics.OutcomeConnection
	default:
		return metrics.OutcomeQuery
	}
}

var _ domain.WhiskyRepository = (*WhiskyRepository)(nil)
