package service

import (
	"context"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/repository"
)

// DashboardStats is the admin overview of sales and admissions.
type DashboardStats struct {
	TotalTickets int64
	PaidTickets  int64
	UsedTickets  int64
	Revenue      float64
}

// ReportService reads aggregates for the admin surface. It only consumes the
// audit log; it never writes to it.
type ReportService struct {
	tickets  repository.TicketRepository
	attempts repository.EntryAttemptRepository
	users    repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, attempts repository.EntryAttemptRepository, users repository.UserRepository) *ReportService {
	return &ReportService{tickets: tickets, attempts: attempts, users: users}
}

// Dashboard returns sales totals and revenue.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalTickets: stats.TotalTickets,
		PaidTickets:  stats.PaidTickets,
		UsedTickets:  stats.UsedTickets,
		Revenue:      stats.Revenue,
	}, nil
}

// RecentEntries returns the latest validation attempts.
func (s *ReportService) RecentEntries(ctx context.Context, limit int) ([]domain.EntryAttempt, error) {
	return s.attempts.ListRecent(ctx, limit)
}

// ListUsers returns registered accounts, newest first.
func (s *ReportService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}
