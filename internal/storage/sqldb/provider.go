// Package sqldb содержит общий для PostgreSQL и SQLite слой доступа к данным:
// выдачу соединений операциям и SQL-реализацию репозитория каталога.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
)

// Provider выдаёт операциям соединения из пула database/sql.
// Политика пула (размер, время жизни) задаётся при открытии *sql.DB.
type Provider struct {
	db      *sql.DB
	metrics *metrics.StoreMetrics
	logger  *log.Entry
}

// NewProvider конструирует провайдер поверх открытого пула.
func NewProvider(db *sql.DB, storeMetrics *metrics.StoreMetrics, logger *log.Entry) *Provider {
	if logger == nil {
		logger = log.WithField("component", "sqldb")
	}
	return &Provider{db: db, metrics: storeMetrics, logger: logger}
}

// Handle держит соединение, принадлежащее одной операции.
type Handle struct {
	conn      *sql.Conn
	once      sync.Once
	releaseFn func()
	err       error
}

// Conn возвращает соединение для выполнения запросов.
func (h *Handle) Conn() *sql.Conn {
	return h.conn
}

// Release возвращает соединение в пул. Повторные вызовы ничего не делают.
func (h *Handle) Release() error {
	h.once.Do(func() {
		h.err = h.conn.Close()
		if h.releaseFn != nil {
			h.releaseFn()
		}
	})
	return h.err
}

// Acquire получает соединение или возвращает *domain.ConnectionError.
// Может блокироваться, пока пул не освободит соединение.
func (p *Provider) Acquire(ctx context.Context, op string) (*Handle, error) {
	if p == nil || p.db == nil {
		return nil, &domain.ConnectionError{Op: op, Err: fmt.Errorf("store is not initialized")}
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		p.metrics.RecordAcquireFailed()
		return nil, &domain.ConnectionError{Op: op, Err: err}
	}
	p.metrics.RecordAcquired()

	return &Handle{conn: conn, releaseFn: p.metrics.RecordReleased}, nil
}

// WithConn выполняет fn на выделенном соединении и освобождает его
// на любом пути выхода, включая ошибку и панику внутри fn.
func (p *Provider) WithConn(ctx context.Context, op string, fn func(ctx context.Context, conn *sql.Conn) error) error {
	handle, err := p.Acquire(ctx, op)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := handle.Release(); relErr != nil {
			p.logger.WithError(relErr).WithField("operation", op).Warn("failed to release store connection")
		}
	}()

	return fn(ctx, handle.Conn())
}

// Ping проверяет доступность хранилища.
func (p *Provider) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("store is not initialized")
	}
	return p.db.PingContext(ctx)
}
