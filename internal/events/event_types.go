package events

import (
	"time"

	"github.com/kabayemedia/ticketing/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEntryGranted    EventType = "entry_granted"
	EventEntryDenied     EventType = "entry_denied"
	EventTicketPurchased EventType = "ticket_purchased"
	EventPaymentSettled  EventType = "payment_settled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketRef string      `json:"ticket_ref,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EntryGrantedPayload payload.
type EntryGrantedPayload struct {
	DeviceRef string `json:"device_ref"`
	EventName string `json:"event_name"`
	OwnerName string `json:"owner_name"`
}

// EntryDeniedPayload payload.
type EntryDeniedPayload struct {
	DeviceRef string              `json:"device_ref"`
	Reason    domain.DenialReason `json:"reason"`
}

// TicketPurchasedPayload payload.
type TicketPurchasedPayload struct {
	EventID string  `json:"event_id"`
	OwnerID string  `json:"owner_id"`
	Price   float64 `json:"price"`
}

// PaymentSettledPayload payload.
type PaymentSettledPayload struct {
	State      domain.PaymentState `json:"state"`
	PaymentRef *string             `json:"payment_ref,omitempty"`
}
