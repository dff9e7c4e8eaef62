package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/events"
	"github.com/kabayemedia/ticketing/internal/payment"
	"github.com/kabayemedia/ticketing/internal/qr"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/pkg/util"
)

const accessTokenBytes = 32

// PurchaseService coordinates ticket creation and payment settlement.
type PurchaseService struct {
	tickets    repository.TicketRepository
	catalog    repository.EventRepository
	gateway    payment.Gateway
	encoder    qr.Encoder
	dispatcher events.Dispatcher
}

// PurchaseDependencies bundles collaborators for the purchase flow.
type PurchaseDependencies struct {
	TicketRepo repository.TicketRepository
	EventRepo  repository.EventRepository
	Gateway    payment.Gateway
	Encoder    qr.Encoder
	Dispatcher events.Dispatcher
}

// NewPurchaseService constructs the service.
func NewPurchaseService(deps PurchaseDependencies) *PurchaseService {
	return &PurchaseService{
		tickets:    deps.TicketRepo,
		catalog:    deps.EventRepo,
		gateway:    deps.Gateway,
		encoder:    deps.Encoder,
		dispatcher: deps.Dispatcher,
	}
}

// Purchase creates a PENDING ticket with a fresh access token, charges the
// buyer, and settles the payment state exactly once. The ticket row survives
// a failed charge with payment_state FAILED.
func (s *PurchaseService) Purchase(ctx context.Context, buyer *domain.User, eventID string) (*domain.Ticket, error) {
	event, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("event", map[string]any{"event_id": eventID})
		}
		return nil, err
	}
	if !event.IsActive {
		return nil, util.NewValidationError("event is not open for sale", nil)
	}

	sold, err := s.tickets.CountPaidByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if sold >= int64(event.MaxCapacity) {
		return nil, util.NewConflict("event is sold out", map[string]any{"event_id": eventID})
	}

	token, err := util.NewAccessToken(accessTokenBytes)
	if err != nil {
		return nil, err
	}
	image, err := s.encoder.Encode(token)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketRef:    uuid.NewString(),
		AccessToken:  token,
		OwnerID:      buyer.ID,
		EventID:      event.ID,
		PaymentState: domain.PaymentStatePending,
		QRImageData:  image,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketPurchased,
		TicketRef: ticket.TicketRef,
		Payload: events.TicketPurchasedPayload{
			EventID: event.ID,
			OwnerID: buyer.ID,
			Price:   event.Price,
		},
	})

	reference, err := paymentReference(ticket)
	if err != nil {
		return nil, err
	}
	result, err := s.gateway.Charge(ctx, buyer.Phone, event.Price, reference)
	if err != nil {
		return nil, err
	}

	state := domain.PaymentStateFailed
	var paymentRef *string
	if result.Success {
		state = domain.PaymentStatePaid
		paymentRef = &result.TransactionID
	}
	if err := s.tickets.RecordPaymentResult(ctx, ticket.ID, state, paymentRef); err != nil {
		return nil, err
	}
	ticket.PaymentState = state
	ticket.PaymentRef = paymentRef

	s.publish(ctx, events.Event{
		Type:      events.EventPaymentSettled,
		TicketRef: ticket.TicketRef,
		Payload: events.PaymentSettledPayload{
			State:      state,
			PaymentRef: paymentRef,
		},
	})

	if !result.Success {
		return ticket, util.NewDomainError("PAYMENT_FAILED", result.Message, 402, map[string]any{
			"ticket_ref": ticket.TicketRef,
		})
	}
	return ticket, nil
}

// ListOwned returns the buyer's tickets, newest first.
func (s *PurchaseService) ListOwned(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListByOwner(ctx, ownerID, limit, offset)
}

// GetOwned fetches one ticket, enforcing owner-or-admin access.
func (s *PurchaseService) GetOwned(ctx context.Context, caller *domain.User, ticketRef string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByRef(ctx, ticketRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_ref": ticketRef})
		}
		return nil, err
	}
	if ticket.OwnerID != caller.ID && !caller.IsAdmin {
		return nil, util.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *PurchaseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func paymentReference(ticket *domain.Ticket) (string, error) {
	code, err := util.NewHexCode(4)
	if err != nil {
		return "", err
	}
	ref := strings.ReplaceAll(ticket.TicketRef, "-", "")
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return fmt.Sprintf("TKT%s%s", strings.ToUpper(ref), code), nil
}
