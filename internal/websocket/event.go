package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeSynced    EventType = "synced"
	EventTypeRefreshed EventType = "refreshed"
	EventTypeSnapshot  EventType = "snapshot"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeInvoice     EntityType = "invoice"
	EntityTypeOutstanding EntityType = "outstanding"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "invoice.synced"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "invoice"
	Payload   interface{} `json:"payload"`   // Event data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InvoicesSynced creates an invoice.synced event
func InvoicesSynced(payload interface{}) Event {
	return NewEvent(EventTypeSynced, EntityTypeInvoice, payload)
}

// OutstandingRefreshed creates an outstanding.refreshed event
func OutstandingRefreshed(payload interface{}) Event {
	return NewEvent(EventTypeRefreshed, EntityTypeOutstanding, payload)
}

// OutstandingSnapshot creates the outstanding.snapshot event a client receives on connect
func OutstandingSnapshot(payload interface{}) Event {
	return NewEvent(EventTypeSnapshot, EntityTypeOutstanding, payload)
}
