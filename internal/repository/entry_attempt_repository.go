package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kabayemedia/ticketing/internal/domain"
)

// EntryAttemptRepository is the append-only audit log of validation attempts.
// Nothing in the service ever updates or deletes a row.
type EntryAttemptRepository interface {
	Append(ctx context.Context, attempt *domain.EntryAttempt) error
	ListRecent(ctx context.Context, limit int) ([]domain.EntryAttempt, error)
}

type entryAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewEntryAttemptRepository instantiates repository.
func NewEntryAttemptRepository(pool *pgxpool.Pool) EntryAttemptRepository {
	return &entryAttemptRepository{pool: pool}
}

func (r *entryAttemptRepository) Append(ctx context.Context, attempt *domain.EntryAttempt) error {
	const query = `
        INSERT INTO entry_attempts (ticket_id, outcome, denial_reason, device_ref)
        VALUES ($1,$2,$3,$4)
        RETURNING id, attempted_at`
	return r.pool.QueryRow(ctx, query,
		attempt.TicketID,
		attempt.Outcome,
		attempt.DenialReason,
		attempt.DeviceRef,
	).Scan(&attempt.ID, &attempt.AttemptedAt)
}

func (r *entryAttemptRepository) ListRecent(ctx context.Context, limit int) ([]domain.EntryAttempt, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT id, ticket_id, outcome, denial_reason, device_ref, attempted_at
        FROM entry_attempts ORDER BY attempted_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntryAttempts(rows)
}

func scanEntryAttempts(rows pgx.Rows) ([]domain.EntryAttempt, error) {
	var result []domain.EntryAttempt
	for rows.Next() {
		var attempt domain.EntryAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.TicketID,
			&attempt.Outcome,
			&attempt.DenialReason,
			&attempt.DeviceRef,
			&attempt.AttemptedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attempt)
	}
	return result, rows.Err()
}
