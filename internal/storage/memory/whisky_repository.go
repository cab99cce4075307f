// Package memory содержит in-memory реализацию каталога для локальной разработки и тестов.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
)

// WhiskyRepository хранит записи в map под RWMutex.
// ID выдаются монотонно и не переиспользуются после удаления.
type WhiskyRepository struct {
	mu     sync.RWMutex
	items  map[int64]domain.Whisky
	nextID int64
	closed bool
}

// NewWhiskyRepository возвращает пустой репозиторий.
func NewWhiskyRepository() *WhiskyRepository {
	return &WhiskyRepository{items: make(map[int64]domain.Whisky)}
}

// EnsureSchema ничего не делает: схема in-memory хранилища существует всегда.
func (r *WhiskyRepository) EnsureSchema(ctx context.Context) error {
	return r.check(ctx, "ensure_schema")
}

// Ping сообщает, открыт ли репозиторий.
func (r *WhiskyRepository) Ping(ctx context.Context) error {
	return r.check(ctx, "ping")
}

// Close переводит репозиторий в закрытое состояние; дальнейшие операции
// возвращают *domain.ConnectionError, как и закрытый SQL-пул.
func (r *WhiskyRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// List возвращает записи по возрастанию ID.
func (r *WhiskyRepository) List(ctx context.Context) ([]domain.Whisky, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkLocked(ctx, "list"); err != nil {
		return nil, err
	}

	result := make([]domain.Whisky, 0, len(r.items))
	for _, w := range r.items {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *WhiskyRepository) Insert(ctx context.Context, w domain.Whisky) (domain.Whisky, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(ctx, "insert"); err != nil {
		return domain.Whisky{}, err
	}
	if err := checkLength("insert", w); err != nil {
		return domain.Whisky{}, err
	}

	r.nextID++
	stored := domain.Whisky{ID: r.nextID, Name: w.Name, Origin: w.Origin}
	r.items[stored.ID] = stored
	return stored, nil
}

func (r *WhiskyRepository) Fetch(ctx context.Context, id int64) (domain.Whisky, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkLocked(ctx, "fetch"); err != nil {
		return domain.Whisky{}, err
	}

	w, ok := r.items[id]
	if !ok {
		return domain.Whisky{}, domain.ErrWhiskyNotFound
	}
	return w, nil
}

func (r *WhiskyRepository) Update(ctx context.Context, id int64, w domain.Whisky) (domain.Whisky, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(ctx, "update"); err != nil {
		return domain.Whisky{}, err
	}
	if err := checkLength("update", w); err != nil {
		return domain.Whisky{}, err
	}
	if _, ok := r.items[id]; !ok {
		return domain.Whisky{}, domain.ErrWhiskyNotFound
	}

	updated := domain.Whisky{ID: id, Name: w.Name, Origin: w.Origin}
	r.items[id] = updated
	return updated, nil
}

func (r *WhiskyRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked(ctx, "delete"); err != nil {
		return err
	}
	delete(r.items, id)
	return nil
}

func (r *WhiskyRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkLocked(ctx, "count"); err != nil {
		return 0, err
	}
	return len(r.items), nil
}

func (r *WhiskyRepository) check(ctx context.Context, op string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkLocked(ctx, op)
}

func (r *WhiskyRepository) checkLocked(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &domain.ConnectionError{Op: op, Err: err}
	}
	if r.closed {
		return &domain.ConnectionError{Op: op, Err: fmt.Errorf("repository is closed")}
	}
	return nil
}

// checkLength повторяет ограничение VARCHAR(100) SQL-схемы.
func checkLength(op string, w domain.Whisky) error {
	if utf8.RuneCountInString(w.Name) > domain.MaxFieldLength || utf8.RuneCountInString(w.Origin) > domain.MaxFieldLength {
		return &domain.QueryError{Op: op, Err: fmt.Errorf("value exceeds %d characters", domain.MaxFieldLength)}
	}
	return nil
}

var (
	_ domain.WhiskyRepository = (*WhiskyRepository)(nil)
	_ domain.SchemaManager    = (*WhiskyRepository)(nil)
)
