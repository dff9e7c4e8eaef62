package domain

import "time"

// EntryOutcome is the terminal result of a validation attempt.
type EntryOutcome string

const (
	EntryGranted EntryOutcome = "GRANTED"
	EntryDenied  EntryOutcome = "DENIED"
)

// DenialReason identifies which check rejected a presented token.
type DenialReason string

const (
	ReasonMissingToken DenialReason = "missing_token"
	ReasonInvalidToken DenialReason = "invalid_token"
	ReasonNotPaid      DenialReason = "not_paid"
	ReasonAlreadyUsed  DenialReason = "already_used"
	ReasonWrongDay     DenialReason = "wrong_day"
)

// EntryAttempt is one append-only audit record per validation attempt.
// TicketID is nil when the token matched no ticket.
type EntryAttempt struct {
	ID           string
	TicketID     *string
	Outcome      EntryOutcome
	DenialReason *DenialReason
	DeviceRef    string
	AttemptedAt  time.Time
}
