package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/pkg/util"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeTicketStore is an in-memory TicketRepository safe for concurrent use.
type fakeTicketStore struct {
	mu      sync.Mutex
	byID    map[string]*domain.Ticket
	byToken map[string]string
	lookups int
	findErr error
	markErr error
	nextID  int
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{
		byID:    make(map[string]*domain.Ticket),
		byToken: make(map[string]string),
	}
}

func (s *fakeTicketStore) add(ticket *domain.Ticket) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("tid-%d", s.nextID)
	}
	s.byID[ticket.ID] = ticket
	s.byToken[ticket.AccessToken] = ticket.ID
	return ticket
}

func (s *fakeTicketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	s.add(ticket)
	ticket.PurchasedAt = time.Now()
	return nil
}

func (s *fakeTicketStore) GetByRef(_ context.Context, ticketRef string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ticket := range s.byID {
		if ticket.TicketRef == ticketRef {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeTicketStore) GetByToken(_ context.Context, accessToken string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.findErr != nil {
		return nil, s.findErr
	}
	id, ok := s.byToken[accessToken]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *fakeTicketStore) ListByOwner(_ context.Context, ownerID string, _, _ int) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range s.byID {
		if ticket.OwnerID == ownerID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (s *fakeTicketStore) MarkUsed(_ context.Context, ticketID string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	ticket, ok := s.byID[ticketID]
	if !ok || ticket.Used {
		return false, nil
	}
	ticket.Used = true
	ticket.UsedAt = &usedAt
	return true, nil
}

func (s *fakeTicketStore) RecordPaymentResult(_ context.Context, ticketID string, state domain.PaymentState, paymentRef *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.byID[ticketID]
	if !ok || ticket.PaymentState != domain.PaymentStatePending {
		return pgx.ErrNoRows
	}
	ticket.PaymentState = state
	ticket.PaymentRef = paymentRef
	return nil
}

func (s *fakeTicketStore) CountPaidByEvent(_ context.Context, eventID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, ticket := range s.byID {
		if ticket.EventID == eventID && ticket.PaymentState == domain.PaymentStatePaid {
			count++
		}
	}
	return count, nil
}

func (s *fakeTicketStore) Stats(_ context.Context) (*repository.TicketStats, error) {
	return &repository.TicketStats{}, nil
}

func (s *fakeTicketStore) get(ticketID string) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[ticketID]
}

// fakeAuditLog is an in-memory EntryAttemptRepository.
type fakeAuditLog struct {
	mu        sync.Mutex
	entries   []domain.EntryAttempt
	appendErr error
}

func (l *fakeAuditLog) Append(_ context.Context, attempt *domain.EntryAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	attempt.ID = fmt.Sprintf("att-%d", len(l.entries)+1)
	attempt.AttemptedAt = time.Now()
	l.entries = append(l.entries, *attempt)
	return nil
}

func (l *fakeAuditLog) ListRecent(_ context.Context, limit int) ([]domain.EntryAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	result := make([]domain.EntryAttempt, limit)
	copy(result, l.entries[len(l.entries)-limit:])
	return result, nil
}

func (l *fakeAuditLog) all() []domain.EntryAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.EntryAttempt{}, l.entries...)
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if s.users == nil {
		s.users = make(map[string]*domain.User)
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("uid-%d", len(s.users)+1)
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var result []domain.User
	for _, user := range s.users {
		result = append(result, *user)
	}
	return result, nil
}

type fakeEventStore struct {
	events map[string]*domain.Event
}

func (s *fakeEventStore) Create(_ context.Context, event *domain.Event) error {
	if s.events == nil {
		s.events = make(map[string]*domain.Event)
	}
	if event.ID == "" {
		event.ID = fmt.Sprintf("eid-%d", len(s.events)+1)
	}
	event.CreatedAt = time.Now()
	s.events[event.ID] = event
	return nil
}

func (s *fakeEventStore) GetByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (s *fakeEventStore) ListActive(_ context.Context) ([]domain.Event, error) {
	var result []domain.Event
	for _, event := range s.events {
		if event.IsActive {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (s *fakeEventStore) ListAll(_ context.Context) ([]domain.Event, error) {
	var result []domain.Event
	for _, event := range s.events {
		result = append(result, *event)
	}
	return result, nil
}

type admissionFixture struct {
	tickets *fakeTicketStore
	log     *fakeAuditLog
	users   *fakeUserStore
	events  *fakeEventStore
	now     time.Time
	svc     *AdmissionService
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()
	now := time.Date(2024, 6, 15, 19, 0, 0, 0, time.UTC)
	f := &admissionFixture{
		tickets: newFakeTicketStore(),
		log:     &fakeAuditLog{},
		users:   &fakeUserStore{users: make(map[string]*domain.User)},
		events:  &fakeEventStore{events: make(map[string]*domain.Event)},
		now:     now,
	}
	f.users.users["uid-1"] = &domain.User{ID: "uid-1", Username: "alice", Email: "alice@example.com"}
	f.events.events["eid-1"] = &domain.Event{ID: "eid-1", Name: "Summer Concert", Date: now, MaxCapacity: 100, IsActive: true}
	f.svc = NewAdmissionService(AdmissionDependencies{
		TicketRepo:  f.tickets,
		AttemptRepo: f.log,
		UserRepo:    f.users,
		EventRepo:   f.events,
		Clock:       fixedClock{now: now},
	})
	return f
}

func (f *admissionFixture) addTicket(token string, state domain.PaymentState, used bool) *domain.Ticket {
	return f.tickets.add(&domain.Ticket{
		TicketRef:    "ref-" + token,
		AccessToken:  token,
		OwnerID:      "uid-1",
		EventID:      "eid-1",
		PaymentState: state,
		Used:         used,
	})
}

func TestValidateMissingToken(t *testing.T) {
	f := newAdmissionFixture(t)

	for _, token := range []string{"", "   "} {
		decision, err := f.svc.Validate(context.Background(), token, "dev1")
		require.NoError(t, err)
		assert.Equal(t, domain.EntryDenied, decision.Outcome)
		assert.Equal(t, domain.ReasonMissingToken, decision.ReasonCode)
		assert.NotEmpty(t, decision.DisplayMessage)
	}

	// No store lookup and no audit row for malformed requests.
	assert.Equal(t, 0, f.tickets.lookups)
	assert.Empty(t, f.log.all())
}

func TestValidateUnknownToken(t *testing.T) {
	f := newAdmissionFixture(t)

	decision, err := f.svc.Validate(context.Background(), "xyz", "dev1")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryDenied, decision.Outcome)
	assert.Equal(t, domain.ReasonInvalidToken, decision.ReasonCode)
	assert.Equal(t, "ACCESS DENIED\nInvalid Ticket", decision.DisplayMessage)

	entries := f.log.all()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].TicketID)
	assert.Equal(t, domain.EntryDenied, entries[0].Outcome)
	require.NotNil(t, entries[0].DenialReason)
	assert.Equal(t, domain.ReasonInvalidToken, *entries[0].DenialReason)
	assert.Equal(t, "dev1", entries[0].DeviceRef)
}

func TestValidateNotPaid(t *testing.T) {
	f := newAdmissionFixture(t)

	for _, state := range []domain.PaymentState{domain.PaymentStatePending, domain.PaymentStateFailed} {
		ticket := f.addTicket("tok-"+string(state), state, false)

		decision, err := f.svc.Validate(context.Background(), ticket.AccessToken, "dev1")
		require.NoError(t, err)
		assert.Equal(t, domain.ReasonNotPaid, decision.ReasonCode)
		assert.Equal(t, "ACCESS DENIED\nTicket Not Paid", decision.DisplayMessage)
		assert.False(t, f.tickets.get(ticket.ID).Used, "denial must not mutate the ticket")
	}

	assert.Len(t, f.log.all(), 2)
}

func TestValidateAlreadyUsed(t *testing.T) {
	f := newAdmissionFixture(t)
	ticket := f.addTicket("abc123", domain.PaymentStatePaid, true)

	decision, err := f.svc.Validate(context.Background(), ticket.AccessToken, "dev1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonAlreadyUsed, decision.ReasonCode)
	assert.Equal(t, "ACCESS DENIED\nTicket Already Used", decision.DisplayMessage)

	entries := f.log.all()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].TicketID)
	assert.Equal(t, ticket.ID, *entries[0].TicketID)
}

func TestValidateWrongDay(t *testing.T) {
	f := newAdmissionFixture(t)
	f.events.events["eid-1"].Date = f.now.Add(5 * 24 * time.Hour)
	ticket := f.addTicket("abc123", domain.PaymentStatePaid, false)

	decision, err := f.svc.Validate(context.Background(), ticket.AccessToken, "dev1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonWrongDay, decision.ReasonCode)
	assert.Equal(t, "ACCESS DENIED\nEvent Not Today", decision.DisplayMessage)
	assert.False(t, f.tickets.get(ticket.ID).Used)
}

func TestValidateDayWindowIsSymmetric(t *testing.T) {
	cases := []struct {
		name    string
		offset  time.Duration
		granted bool
	}{
		{"event right now", 0, true},
		{"event tomorrow evening", 28 * time.Hour, true},
		{"event yesterday", -30 * time.Hour, true},
		{"event in two days", 49 * time.Hour, false},
		{"event two days ago", -49 * time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAdmissionFixture(t)
			f.events.events["eid-1"].Date = f.now.Add(tc.offset)
			ticket := f.addTicket("tok", domain.PaymentStatePaid, false)

			decision, err := f.svc.Validate(context.Background(), ticket.AccessToken, "dev1")
			require.NoError(t, err)
			if tc.granted {
				assert.Equal(t, domain.EntryGranted, decision.Outcome)
			} else {
				assert.Equal(t, domain.ReasonWrongDay, decision.ReasonCode)
			}
		})
	}
}

func TestValidateGrantThenReuse(t *testing.T) {
	f := newAdmissionFixture(t)
	ticket := f.addTicket("abc123", domain.PaymentStatePaid, false)

	decision, err := f.svc.Validate(context.Background(), "abc123", "dev1")
	require.NoError(t, err)
	require.True(t, decision.Granted())
	assert.Equal(t, "alice", decision.HolderName)
	assert.Equal(t, "Summer Concert", decision.EventName)
	assert.Equal(t, ticket.TicketRef, decision.TicketRef)
	assert.Equal(t, "ACCESS GRANTED\nWelcome alice", decision.DisplayMessage)

	stored := f.tickets.get(ticket.ID)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.UsedAt)
	assert.Equal(t, f.now, *stored.UsedAt)

	// A second scan of the same token is a denial, not an error.
	again, err := f.svc.Validate(context.Background(), "abc123", "dev2")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonAlreadyUsed, again.ReasonCode)

	entries := f.log.all()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntryGranted, entries[0].Outcome)
	assert.Nil(t, entries[0].DenialReason)
	assert.Equal(t, domain.EntryDenied, entries[1].Outcome)
}

func TestValidateConcurrentSameToken(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addTicket("abc123", domain.PaymentStatePaid, false)

	const workers = 32
	decisions := make([]*Decision, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			decisions[i], errs[i] = f.svc.Validate(context.Background(), "abc123", fmt.Sprintf("dev-%d", i))
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if decisions[i].Granted() {
			granted++
		} else {
			assert.Equal(t, domain.ReasonAlreadyUsed, decisions[i].ReasonCode)
		}
	}
	assert.Equal(t, 1, granted, "exactly one concurrent scan may grant")

	entries := f.log.all()
	assert.Len(t, entries, workers)
	grantedEntries := 0
	for _, entry := range entries {
		if entry.Outcome == domain.EntryGranted {
			grantedEntries++
		}
	}
	assert.Equal(t, 1, grantedEntries)
}

func TestValidateStoreUnavailable(t *testing.T) {
	f := newAdmissionFixture(t)
	f.tickets.findErr = errors.New("connection refused")

	decision, err := f.svc.Validate(context.Background(), "abc123", "dev1")
	require.Error(t, err)
	assert.Nil(t, decision)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SERVICE_UNAVAILABLE", domainErr.Code)
	assert.Equal(t, 503, domainErr.HTTPStatus)
}

func TestValidateAuditLogUnavailable(t *testing.T) {
	f := newAdmissionFixture(t)
	f.log.appendErr = errors.New("disk full")

	decision, err := f.svc.Validate(context.Background(), "unknown-token", "dev1")
	require.Error(t, err)
	assert.Nil(t, decision)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SERVICE_UNAVAILABLE", domainErr.Code)
}

func TestValidateDefaultsUnknownDevice(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addTicket("abc123", domain.PaymentStatePaid, false)

	decision, err := f.svc.Validate(context.Background(), "abc123", "")
	require.NoError(t, err)
	require.True(t, decision.Granted())

	entries := f.log.all()
	require.Len(t, entries, 1)
	assert.Equal(t, UnknownDevice, entries[0].DeviceRef)
}

func TestWholeDaysApart(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, wholeDaysApart(base, base))
	assert.Equal(t, 0, wholeDaysApart(base.Add(23*time.Hour), base))
	assert.Equal(t, 1, wholeDaysApart(base.Add(25*time.Hour), base))
	assert.Equal(t, 1, wholeDaysApart(base.Add(-25*time.Hour), base))
	assert.Equal(t, 2, wholeDaysApart(base.Add(48*time.Hour), base))
}
