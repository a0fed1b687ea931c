package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event raised by an aggregate
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides the common fields of a domain event
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

// NewBaseEvent creates a base event with generated id and current timestamp
func NewBaseEvent(aggregateID, eventType string, version int) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   time.Now(),
		Version:     version,
	}
}

func (e BaseEvent) GetEventID() string     { return e.EventID }
func (e BaseEvent) GetAggregateID() string { return e.AggregateID }
func (e BaseEvent) GetEventType() string   { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}
func (e BaseEvent) GetVersion() int { return e.Version }
