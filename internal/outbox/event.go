package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a fact recorded in the same transaction as the change that
// caused it and delivered to its handler afterwards, at least once.
type Event struct {
	ID          string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      Status
	Attempts    int
	LastError   string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent creates a pending event with a JSON-encoded payload.
func NewEvent(eventType, aggregateID string, payload any) (*Event, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, ErrEventTypeRequired
	}
	if strings.TrimSpace(aggregateID) == "" {
		return nil, ErrAggregateIDRequired
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadNotJSON, err)
	}

	now := time.Now().UTC()
	return &Event{
		ID:          uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     data,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.EventType, err)
	}
	return nil
}
