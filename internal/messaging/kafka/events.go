package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
)

// TopicCatalogEvents задаёт topic изменений каталога по умолчанию.
const TopicCatalogEvents = "whisky.catalog.events"

// HeaderEventType дублирует тип события в заголовке, чтобы потребители могли фильтровать без разбора тела.
const HeaderEventType = "x-event-type"

// WhiskyEvent описывает сообщение об изменении записи каталога.
type WhiskyEvent struct {
	EventID    string            `json:"event_id"`
	EventType  domain.ChangeKind `json:"event_type"`
	WhiskyID   int64             `json:"whisky_id"`
	Name       string            `json:"name,omitempty"`
	Origin     string            `json:"origin,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewWhiskyEvent строит событие с новым EventID.
func NewWhiskyEvent(change domain.WhiskyChange) WhiskyEvent {
	occurredAt := change.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return WhiskyEvent{
		EventID:    uuid.NewString(),
		EventType:  change.Kind,
		WhiskyID:   change.Whisky.ID,
		Name:       change.Whisky.Name,
		Origin:     change.Whisky.Origin,
		OccurredAt: occurredAt,
	}
}

// ParseWhiskyEvent разбирает событие каталога из сообщения.
func ParseWhiskyEvent(message *sarama.ConsumerMessage) (WhiskyEvent, error) {
	var event WhiskyEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return WhiskyEvent{}, fmt.Errorf("failed to unmarshal whisky event: %w", err)
	}
	if event.EventID == "" || event.EventType == "" {
		return WhiskyEvent{}, fmt.Errorf("whisky event is missing event_id or event_type")
	}
	return event, nil
}
