package dto

import (
	"time"

	"github.com/kabayemedia/ticketing/internal/domain"
)

// PurchaseTicketRequest payload.
type PurchaseTicketRequest struct {
	EventID string `json:"event_id"`
}

// TicketResponse is the owner's view of a ticket, including the credential
// presented at the gate.
type TicketResponse struct {
	TicketRef    string              `json:"ticket_ref"`
	EventID      string              `json:"event_id"`
	PaymentState domain.PaymentState `json:"payment_state"`
	PaymentRef   *string             `json:"payment_ref,omitempty"`
	AccessToken  string              `json:"access_token"`
	QRImageData  string              `json:"qr_image_data"`
	Used         bool                `json:"used"`
	UsedAt       *time.Time          `json:"used_at,omitempty"`
	PurchasedAt  time.Time           `json:"purchased_at"`
}

// EntryAttemptResponse is one audit row for reporting.
type EntryAttemptResponse struct {
	ID           string    `json:"id"`
	TicketID     *string   `json:"ticket_id"`
	Outcome      string    `json:"outcome"`
	DenialReason *string   `json:"denial_reason,omitempty"`
	DeviceRef    string    `json:"device_ref"`
	AttemptedAt  time.Time `json:"attempted_at"`
}
