package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kabayemedia/ticketing/internal/domain"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// CatalogService manages the event catalog.
type CatalogService struct {
	catalog repository.EventRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(catalog repository.EventRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Name        string
	Description string
	Price       float64
	Date        time.Time
	Location    string
	MaxCapacity int
}

// CreateEvent registers a new catalog entry (admin only, enforced upstream).
func (s *CatalogService) CreateEvent(ctx context.Context, input EventCreateInput) (*domain.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Location) == "" {
		return nil, util.NewValidationError("name and location required", nil)
	}
	if input.Price < 0 {
		return nil, util.NewValidationError("price must not be negative", nil)
	}
	if input.Date.IsZero() {
		return nil, util.NewValidationError("date required", nil)
	}

	capacity := input.MaxCapacity
	if capacity <= 0 {
		capacity = 100
	}

	event := &domain.Event{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Date:        input.Date,
		Location:    strings.TrimSpace(input.Location),
		MaxCapacity: capacity,
		IsActive:    true,
	}
	if err := s.catalog.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListActive returns events open for sale.
func (s *CatalogService) ListActive(ctx context.Context) ([]domain.Event, error) {
	return s.catalog.ListActive(ctx)
}

// ListAll returns the full catalog for admins.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Event, error) {
	return s.catalog.ListAll(ctx)
}

// Get returns one event.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("event", map[string]any{"event_id": id})
		}
		return nil, err
	}
	return event, nil
}
