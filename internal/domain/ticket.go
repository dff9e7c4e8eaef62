package domain

import "time"

// PaymentState enumerates payment lifecycle states for a ticket.
type PaymentState string

const (
	PaymentStatePending PaymentState = "PENDING"
	PaymentStatePaid    PaymentState = "PAID"
	PaymentStateFailed  PaymentState = "FAILED"
)

// Ticket is the aggregate for a purchased event ticket. AccessToken is the
// sole credential presented at the gate; Used flips false to true at most
// once over the ticket's lifetime.
type Ticket struct {
	ID           string
	TicketRef    string
	AccessToken  string
	OwnerID      string
	EventID      string
	PaymentState PaymentState
	PaymentRef   *string
	Used         bool
	UsedAt       *time.Time
	QRImageData  string
	PurchasedAt  time.Time
}
