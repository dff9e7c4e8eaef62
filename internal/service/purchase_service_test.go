package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/payment"
	"github.com/kabayemedia/ticketing/internal/qr"
	"github.com/kabayemedia/ticketing/pkg/util"
)

type fakeGateway struct {
	succeed bool
	charges []string
}

func (g *fakeGateway) Charge(_ context.Context, _ string, _ float64, reference string) (*payment.Result, error) {
	g.charges = append(g.charges, reference)
	if !g.succeed {
		return &payment.Result{Success: false, Message: "payment processing failed"}, nil
	}
	return &payment.Result{Success: true, TransactionID: "MMDEADBEEF", Message: "payment processed successfully"}, nil
}

type purchaseFixture struct {
	tickets *fakeTicketStore
	events  *fakeEventStore
	gateway *fakeGateway
	buyer   *domain.User
	svc     *PurchaseService
}

func newPurchaseFixture(t *testing.T, gatewaySucceeds bool) *purchaseFixture {
	t.Helper()
	f := &purchaseFixture{
		tickets: newFakeTicketStore(),
		events:  &fakeEventStore{events: make(map[string]*domain.Event)},
		gateway: &fakeGateway{succeed: gatewaySucceeds},
		buyer:   &domain.User{ID: "uid-1", Username: "alice", Phone: "0771234567"},
	}
	f.events.events["eid-1"] = &domain.Event{ID: "eid-1", Name: "Summer Concert", Price: 25.0, MaxCapacity: 2, IsActive: true}
	f.svc = NewPurchaseService(PurchaseDependencies{
		TicketRepo: f.tickets,
		EventRepo:  f.events,
		Gateway:    f.gateway,
		Encoder:    qr.NewPassthroughEncoder(),
	})
	return f
}

func TestPurchaseSuccess(t *testing.T) {
	f := newPurchaseFixture(t, true)

	ticket, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatePaid, ticket.PaymentState)
	require.NotNil(t, ticket.PaymentRef)
	assert.Equal(t, "MMDEADBEEF", *ticket.PaymentRef)
	assert.NotEmpty(t, ticket.TicketRef)
	assert.NotEmpty(t, ticket.AccessToken)

	// The QR payload is the base64 form of the access token.
	decoded, err := base64.StdEncoding.DecodeString(ticket.QRImageData)
	require.NoError(t, err)
	assert.Equal(t, ticket.AccessToken, string(decoded))

	require.Len(t, f.gateway.charges, 1)
	assert.Regexp(t, `^TKT[0-9A-F]+$`, f.gateway.charges[0])

	stored := f.tickets.get(ticket.ID)
	assert.Equal(t, domain.PaymentStatePaid, stored.PaymentState)
	assert.False(t, stored.Used)
}

func TestPurchaseEachTicketGetsDistinctToken(t *testing.T) {
	f := newPurchaseFixture(t, true)

	first, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)
	second, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.TicketRef, second.TicketRef)
}

func TestPurchasePaymentFailureKeepsTicket(t *testing.T) {
	f := newPurchaseFixture(t, false)

	ticket, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.Error(t, err)
	require.NotNil(t, ticket, "the failed ticket row is returned for reconciliation")

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PAYMENT_FAILED", domainErr.Code)
	assert.Equal(t, 402, domainErr.HTTPStatus)

	stored := f.tickets.get(ticket.ID)
	assert.Equal(t, domain.PaymentStateFailed, stored.PaymentState)
	assert.Nil(t, stored.PaymentRef)
}

func TestPurchaseUnknownEvent(t *testing.T) {
	f := newPurchaseFixture(t, true)

	_, err := f.svc.Purchase(context.Background(), f.buyer, "nope")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Empty(t, f.gateway.charges)
}

func TestPurchaseInactiveEvent(t *testing.T) {
	f := newPurchaseFixture(t, true)
	f.events.events["eid-1"].IsActive = false

	_, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestPurchaseSoldOut(t *testing.T) {
	f := newPurchaseFixture(t, true)

	// MaxCapacity is 2; only PAID tickets count against it.
	_, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)
	_, err = f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)

	_, err = f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Len(t, f.gateway.charges, 2)
}

func TestGetOwnedEnforcesOwnership(t *testing.T) {
	f := newPurchaseFixture(t, true)
	ticket, err := f.svc.Purchase(context.Background(), f.buyer, "eid-1")
	require.NoError(t, err)

	stranger := &domain.User{ID: "uid-2", Username: "bob"}
	_, err = f.svc.GetOwned(context.Background(), stranger, ticket.TicketRef)
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	admin := &domain.User{ID: "uid-3", Username: "root", IsAdmin: true}
	got, err := f.svc.GetOwned(context.Background(), admin, ticket.TicketRef)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}
