package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change being announced
type EventType string

const (
	EventTypeCreated          EventType = "created"
	EventTypeUpdated          EventType = "updated"
	EventTypeSeized           EventType = "seized"
	EventTypeClosed           EventType = "closed"
	EventTypePaymentRecorded  EventType = "payment_recorded"
	EventTypeSurchargeUpdated EventType = "surcharge_updated"
)

// EntityType represents the entity the event is about
type EntityType string

const (
	EntityTypeLoan        EntityType = "loan"
	EntityTypeInstallment EntityType = "installment"
)

// Event is one message pushed to connected back-office screens so
// collections dashboards refresh without polling.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "installment.payment_recorded"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "installment"
	Payload   interface{} `json:"payload"`   // Full entity data
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

// LoanCreated creates a loan.created event
func LoanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanUpdated creates a loan.updated event
func LoanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLoan, payload)
}

// LoanSeized creates a loan.seized event
func LoanSeized(payload interface{}) Event {
	return NewEvent(EventTypeSeized, EntityTypeLoan, payload)
}

// LoanClosed creates a loan.closed event
func LoanClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypeLoan, payload)
}

// PaymentRecorded creates an installment.payment_recorded event
func PaymentRecorded(payload interface{}) Event {
	return NewEvent(EventTypePaymentRecorded, EntityTypeInstallment, payload)
}

// SurchargeUpdated creates an installment.surcharge_updated event
func SurchargeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeSurchargeUpdated, EntityTypeInstallment, payload)
}
