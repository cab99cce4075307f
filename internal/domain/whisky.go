package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MaxFieldLength ограничивает длину name/origin в символах, как VARCHAR(100) в схеме.
const MaxFieldLength = 100

// Whisky описывает запись каталога.
type Whisky struct {
	// ID назначается хранилищем при вставке; ноль означает «ещё не сохранён».
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// WhiskyPayload описывает тело запроса на создание или замену записи.
// Поле id во входящем JSON игнорируется.
type WhiskyPayload struct {
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// Whisky собирает несохранённую сущность из проверенного payload.
func (p WhiskyPayload) Whisky() Whisky {
	return Whisky{Name: p.Name, Origin: p.Origin}
}

// Validate проверяет инварианты полей name/origin.
func (p WhiskyPayload) Validate() error {
	if err := validateField("name", p.Name); err != nil {
		return err
	}
	return validateField("origin", p.Origin)
}

// ParseWhiskyPayload декодирует и проверяет тело запроса.
// Любая проблема (пустое тело, не-JSON, неверные поля) возвращается как *ValidationError.
func ParseWhiskyPayload(raw []byte) (WhiskyPayload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return WhiskyPayload{}, NewValidationError("body", "request body is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return WhiskyPayload{}, NewValidationError("body", "request body must be a JSON object")
	}

	var payload WhiskyPayload
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"name", &payload.Name},
		{"origin", &payload.Origin},
	} {
		value, ok := fields[f.name]
		if !ok {
			return WhiskyPayload{}, NewValidationError(f.name, "is required")
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return WhiskyPayload{}, NewValidationError(f.name, "must be a string")
		}
	}

	if err := payload.Validate(); err != nil {
		return WhiskyPayload{}, err
	}
	return payload, nil
}

func validateField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "must not be empty")
	}
	if utf8.RuneCountInString(value) > MaxFieldLength {
		return NewValidationError(field, "must be at most 100 characters")
	}
	return nil
}

// SeedWhiskies возвращает канонические записи для пустого каталога в фиксированном порядке.
func SeedWhiskies() []Whisky {
	return []Whisky{
		{Name: "Bowmore 15 Years Laimrig", Origin: "Scotland, Islay"},
		{Name: "Talisker 57° North", Origin: "Scotland, Island"},
	}
}
