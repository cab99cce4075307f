// Package sqlite реализует хранилище каталога поверх встроенной SQLite (modernc.org/sqlite, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	moderncsqlite "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/storage/sqldb"
)

// MemoryPath открывает базу в памяти процесса.
const MemoryPath = ":memory:"

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
	busyTimeoutMillis   = 5000

	schemaDDL = `
CREATE TABLE IF NOT EXISTS whisky (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(100) NOT NULL CHECK (length(name) <= 100),
    origin VARCHAR(100) NOT NULL CHECK (length(origin) <= 100)
)`
)

// Options задаёт параметры пула соединений.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Store оборачивает подключение к файлу SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open открывает (или создаёт) базу по пути path и проверяет доступность.
// Для MemoryPath пул ограничивается одним соединением: каждое новое
// соединение к :memory: получило бы собственную пустую базу.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	maxOpen, maxIdle := opts.MaxOpenConns, opts.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	if path == MemoryPath {
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	log.WithFields(log.Fields{
		"component": "sqlite",
		"path":      path,
	}).Debug("sqlite connection established")

	return &Store{db: db, path: path}, nil
}

func dsn(path string) string {
	pragmas := "_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMillis) + ")"
	if path == MemoryPath {
		return "file::memory:?" + pragmas
	}
	return "file:" + uriPathEscaper.Replace(path) + "?" + pragmas + "&_pragma=journal_mode(WAL)"
}

// uriPathEscaper экранирует символы, которые SQLite URI считает началом запроса
// или фрагмента. SQLite раскодирует %XX в пути обратно.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// DB возвращает raw SQL DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path возвращает путь к файлу базы.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema создаёт таблицу whisky, если её нет.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store is not initialized")
	}
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create whisky table: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store is not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewWhiskyRepository создаёт SQLite-реализацию репозитория каталога.
func NewWhiskyRepository(store *Store, storeMetrics *metrics.StoreMetrics, logger *log.Entry) *sqldb.WhiskyRepository {
	provider := sqldb.NewProvider(store.DB(), storeMetrics, logger)
	return sqldb.NewWhiskyRepository(provider, sqldb.SQLiteDialect.WithErrorCode(errorCode), storeMetrics)
}

// errorCode возвращает расширенный код результата SQLite.
func errorCode(err error) string {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return strconv.Itoa(sqliteErr.Code())
	}
	return ""
}
