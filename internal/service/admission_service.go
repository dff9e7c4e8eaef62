package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/events"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// UnknownDevice is recorded when a scan request carries no device reference.
const UnknownDevice = "unknown"

// Decision is the terminal result of one validation attempt. Every branch of
// the validator ends in exactly one of these; there are no retryable states.
type Decision struct {
	Outcome        domain.EntryOutcome
	ReasonCode     domain.DenialReason
	DisplayMessage string
	HolderName     string
	EventName      string
	TicketRef      string
}

// Granted reports whether the decision admits the holder.
func (d *Decision) Granted() bool {
	return d.Outcome == domain.EntryGranted
}

// AdmissionService decides whether a presented access token grants physical
// entry. It is stateless between calls; all durable state lives in the
// ticket store and the audit log.
type AdmissionService struct {
	tickets    repository.TicketRepository
	attempts   repository.EntryAttemptRepository
	users      repository.UserRepository
	catalog    repository.EventRepository
	dispatcher events.Dispatcher
	clock      Clock
}

// AdmissionDependencies bundles collaborators for the validator.
type AdmissionDependencies struct {
	TicketRepo  repository.TicketRepository
	AttemptRepo repository.EntryAttemptRepository
	UserRepo    repository.UserRepository
	EventRepo   repository.EventRepository
	Dispatcher  events.Dispatcher
	Clock       Clock
}

// NewAdmissionService constructs the validator.
func NewAdmissionService(deps AdmissionDependencies) *AdmissionService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &AdmissionService{
		tickets:    deps.TicketRepo,
		attempts:   deps.AttemptRepo,
		users:      deps.UserRepo,
		catalog:    deps.EventRepo,
		dispatcher: deps.Dispatcher,
		clock:      clock,
	}
}

// Validate runs the ordered admission checks for a presented token. Malformed
// input is a normal DENIED outcome, never an error; the only errors returned
// are dependency failures (store or audit log unreachable).
func (s *AdmissionService) Validate(ctx context.Context, token, deviceRef string) (*Decision, error) {
	if strings.TrimSpace(deviceRef) == "" {
		deviceRef = UnknownDevice
	}

	// A missing token is a malformed request, not an access attempt; it is
	// denied without touching the store and leaves no audit record.
	if strings.TrimSpace(token) == "" {
		return &Decision{
			Outcome:        domain.EntryDenied,
			ReasonCode:     domain.ReasonMissingToken,
			DisplayMessage: "ACCESS DENIED\nNo Ticket Presented",
		}, nil
	}

	ticket, err := s.tickets.GetByToken(ctx, token)
	if err != nil {
		if err == pgx.ErrNoRows {
			return s.deny(ctx, nil, deviceRef, domain.ReasonInvalidToken, "ACCESS DENIED\nInvalid Ticket")
		}
		return nil, util.NewServiceUnavailable("ticket store", err)
	}

	if ticket.PaymentState != domain.PaymentStatePaid {
		return s.deny(ctx, ticket, deviceRef, domain.ReasonNotPaid, "ACCESS DENIED\nTicket Not Paid")
	}

	if ticket.Used {
		return s.deny(ctx, ticket, deviceRef, domain.ReasonAlreadyUsed, "ACCESS DENIED\nTicket Already Used")
	}

	event, err := s.catalog.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, util.NewServiceUnavailable("ticket store", err)
	}

	now := s.clock.Now()
	if wholeDaysApart(event.Date, now) > 1 {
		return s.deny(ctx, ticket, deviceRef, domain.ReasonWrongDay, "ACCESS DENIED\nEvent Not Today")
	}

	owner, err := s.users.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		return nil, util.NewServiceUnavailable("ticket store", err)
	}

	// The grant is a single conditional update: it succeeds for exactly one
	// caller per ticket regardless of interleaving. Losing the race is
	// reported as already_used, same as a late rescan.
	updated, err := s.tickets.MarkUsed(ctx, ticket.ID, now)
	if err != nil {
		return nil, util.NewServiceUnavailable("ticket store", err)
	}
	if !updated {
		return s.deny(ctx, ticket, deviceRef, domain.ReasonAlreadyUsed, "ACCESS DENIED\nTicket Already Used")
	}

	if err := s.appendAttempt(ctx, &ticket.ID, deviceRef, domain.EntryGranted, nil); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventEntryGranted,
		TicketRef: ticket.TicketRef,
		Payload: events.EntryGrantedPayload{
			DeviceRef: deviceRef,
			EventName: event.Name,
			OwnerName: owner.Username,
		},
	})

	return &Decision{
		Outcome:        domain.EntryGranted,
		DisplayMessage: "ACCESS GRANTED\nWelcome " + owner.Username,
		HolderName:     owner.Username,
		EventName:      event.Name,
		TicketRef:      ticket.TicketRef,
	}, nil
}

// deny writes the audit record for a rejected attempt and builds the
// decision. The append happens after the terminal decision is fixed, so the
// log never claims an admission that did not occur.
func (s *AdmissionService) deny(ctx context.Context, ticket *domain.Ticket, deviceRef string, reason domain.DenialReason, display string) (*Decision, error) {
	var ticketID *string
	ticketRef := ""
	if ticket != nil {
		ticketID = &ticket.ID
		ticketRef = ticket.TicketRef
	}

	if err := s.appendAttempt(ctx, ticketID, deviceRef, domain.EntryDenied, &reason); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventEntryDenied,
		TicketRef: ticketRef,
		Payload: events.EntryDeniedPayload{
			DeviceRef: deviceRef,
			Reason:    reason,
		},
	})

	return &Decision{
		Outcome:        domain.EntryDenied,
		ReasonCode:     reason,
		DisplayMessage: display,
		TicketRef:      ticketRef,
	}, nil
}

func (s *AdmissionService) appendAttempt(ctx context.Context, ticketID *string, deviceRef string, outcome domain.EntryOutcome, reason *domain.DenialReason) error {
	attempt := &domain.EntryAttempt{
		TicketID:     ticketID,
		Outcome:      outcome,
		DenialReason: reason,
		DeviceRef:    deviceRef,
	}
	if err := s.attempts.Append(ctx, attempt); err != nil {
		return util.NewServiceUnavailable("audit log", err)
	}
	return nil
}

func (s *AdmissionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// wholeDaysApart returns the absolute difference between two instants in
// truncated whole days. The window is symmetric: a ticket scans the day
// before, of, or after its event.
func wholeDaysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
