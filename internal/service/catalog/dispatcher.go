// Package catalog переводит входные данные запросов в вызовы репозитория каталога,
// а результаты репозитория в статус и тело ответа.
package catalog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
)

// DefaultStoreFailureStatus используется для ошибок хранилища (соединение или запрос).
const DefaultStoreFailureStatus = http.StatusNotFound

// Коды ошибок в теле ответа.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeStoreFailure    = "store_failure"
)

// Result содержит HTTP-статус ответа и тело для сериализации в JSON.
// Body == nil означает пустое тело.
type Result struct {
	Status int
	Body   any
}

// ErrorBody описывает тело ответа с ошибкой.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

// WithStoreFailureStatus задаёт статус для ConnectionError/QueryError и прочих сбоев хранилища.
func WithStoreFailureStatus(status int) Option {
	return func(d *Dispatcher) {
		if status >= 400 && status <= 599 {
			d.storeFailureStatus = status
		}
	}
}

// WithPublisher подключает публикацию изменений каталога.
func WithPublisher(publisher domain.ChangePublisher) Option {
	return func(d *Dispatcher) {
		if publisher != nil {
			d.publisher = publisher
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher выполняет операции каталога и переводит ошибки домена в HTTP-статусы.
type Dispatcher struct {
	repo               domain.WhiskyRepository
	publisher          domain.ChangePublisher
	storeFailureStatus int
	logger             *log.Entry
	now                func() time.Time
}

// NewDispatcher создаёт диспетчер поверх репозитория.
func NewDispatcher(repo domain.WhiskyRepository, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:               repo,
		publisher:          noopPublisher{},
		storeFailureStatus: DefaultStoreFailureStatus,
		logger:             log.WithField("component", "catalog"),
		now:                func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// List возвращает все записи каталога.
func (d *Dispatcher) List(ctx context.Context) Result {
	whiskies, err := d.repo.List(ctx)
	if err != nil {
		return d.failure("list", err)
	}
	if whiskies == nil {
		whiskies = []domain.Whisky{}
	}
	return Result{Status: http.StatusOK, Body: whiskies}
}

// Create проверяет тело и сохраняет новую запись.
func (d *Dispatcher) Create(ctx context.Context, body []byte) Result {
	payload, err := domain.ParseWhiskyPayload(body)
	if err != nil {
		return d.failure("create", err)
	}

	created, err := d.repo.Insert(ctx, payload.Whisky())
	if err != nil {
		return d.failure("create", err)
	}

	d.publish(ctx, domain.ChangeCreated, created)
	return Result{Status: http.StatusCreated, Body: created}
}

// Get возвращает запись по строковому id из пути.
func (d *Dispatcher) Get(ctx context.Context, rawID string) Result {
	id, err := ParseID(rawID)
	if err != nil {
		return d.failure("get", err)
	}

	whisky, err := d.repo.Fetch(ctx, id)
	if err != nil {
		return d.failure("get", err)
	}
	return Result{Status: http.StatusOK, Body: whisky}
}

// Update целиком заменяет name/origin записи.
func (d *Dispatcher) Update(ctx context.Context, rawID string, body []byte) Result {
	id, err := ParseID(rawID)
	if err != nil {
		return d.failure("update", err)
	}
	payload, err := domain.ParseWhiskyPayload(body)
	if err != nil {
		return d.failure("update", err)
	}

	updated, err := d.repo.Update(ctx, id, payload.Whisky())
	if err != nil {
		return d.failure("update", err)
	}

	d.publish(ctx, domain.ChangeUpdated, updated)
	return Result{Status: http.StatusOK, Body: updated}
}

// Delete удаляет запись; отсутствие записи не считается ошибкой.
func (d *Dispatcher) Delete(ctx context.Context, rawID string) Result {
	id, err := ParseID(rawID)
	if err != nil {
		return d.failure("delete", err)
	}

	if err := d.repo.Delete(ctx, id); err != nil {
		return d.failure("delete", err)
	}

	d.publish(ctx, domain.ChangeDeleted, domain.Whisky{ID: id})
	return Result{Status: http.StatusNoContent}
}

// ParseID разбирает положительный десятичный идентификатор.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError("id", "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("id", "must be an integer")
	}
	if id <= 0 {
		return 0, domain.NewValidationError("id", "must be positive")
	}
	return id, nil
}

func (d *Dispatcher) failure(op string, err error) Result {
	switch {
	case domain.IsValidation(err):
		return Result{Status: http.StatusBadRequest, Body: ErrorBody{Code: CodeInvalidArgument, Message: err.Error()}}
	case domain.IsNotFound(err):
		return Result{Status: http.StatusNotFound, Body: ErrorBody{Code: CodeNotFound, Message: err.Error()}}
	}

	// Детали ошибки хранилища остаются в логе и не уходят клиенту.
	d.logger.WithError(err).WithField("operation", op).Error("catalog store failure")
	return Result{Status: d.storeFailureStatus, Body: ErrorBody{Code: CodeStoreFailure, Message: "store operation failed"}}
}

func (d *Dispatcher) publish(ctx context.Context, kind domain.ChangeKind, w domain.Whisky) {
	change := domain.WhiskyChange{Kind: kind, Whisky: w, OccurredAt: d.now()}
	if err := d.publisher.Publish(ctx, change); err != nil {
		d.logger.WithError(err).WithFields(log.Fields{
			"event":     kind,
			"whisky_id": w.ID,
		}).Warn("failed to publish catalog change")
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.WhiskyChange) error { return nil }
