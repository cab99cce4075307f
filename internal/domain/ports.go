package domain

import (
	"context"
	"time"
)

// ChangeKind задаёт тип изменения записи каталога.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "whisky.created"
	ChangeUpdated ChangeKind = "whisky.updated"
	ChangeDeleted ChangeKind = "whisky.deleted"
)

// WhiskyChange описывает успешно применённое изменение каталога.
type WhiskyChange struct {
	Kind       ChangeKind
	Whisky     Whisky
	OccurredAt time.Time
}

// ChangePublisher передаёт изменения каталога наружу (например, в Kafka).
type ChangePublisher interface {
	Publish(ctx context.Context, change WhiskyChange) error
}
