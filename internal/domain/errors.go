package domain

import (
	"errors"
	"fmt"
)

// ErrWhiskyNotFound возвращается, если ни одна строка не совпала (fetch) или не была затронута (update).
var ErrWhiskyNotFound = errors.New("whisky not found")

// ConnectionError означает, что соединение с хранилищем получить не удалось.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: acquire connection: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError означает, что запрос некорректен или отклонён хранилищем.
// Code содержит код ошибки СУБД (SQLSTATE для PostgreSQL), если драйвер его сообщил.
type QueryError struct {
	Op   string
	Code string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: query failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ValidationError означает, что id или тело запроса отсутствуют или некорректны.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError конструирует ошибку валидации для поля.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// IsNotFound проверяет, что запись не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWhiskyNotFound)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации входных данных.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConnection проверяет, что соединение с хранилищем не было получено.
func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsQuery проверяет, что хранилище отклонило запрос.
func IsQuery(err error) bool {
	var target *QueryError
	return errors.As(err, &target)
}
