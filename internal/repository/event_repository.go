package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kabayemedia/ticketing/internal/domain"
)

// EventRepository defines persistence access for the event catalog.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListActive(ctx context.Context) ([]domain.Event, error)
	ListAll(ctx context.Context) ([]domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, price, date, location, max_capacity, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.Price,
		event.Date,
		event.Location,
		event.MaxCapacity,
		event.IsActive,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `
        SELECT id, name, description, price, date, location, max_capacity, is_active, created_at
        FROM events WHERE id=$1`
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Price,
		&event.Date,
		&event.Location,
		&event.MaxCapacity,
		&event.IsActive,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListActive(ctx context.Context) ([]domain.Event, error) {
	const query = `
        SELECT id, name, description, price, date, location, max_capacity, is_active, created_at
        FROM events WHERE is_active ORDER BY date ASC`
	return r.list(ctx, query)
}

func (r *eventRepository) ListAll(ctx context.Context) ([]domain.Event, error) {
	const query = `
        SELECT id, name, description, price, date, location, max_capacity, is_active, created_at
        FROM events ORDER BY date DESC`
	return r.list(ctx, query)
}

func (r *eventRepository) list(ctx context.Context, query string) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Price,
			&event.Date,
			&event.Location,
			&event.MaxCapacity,
			&event.IsActive,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
