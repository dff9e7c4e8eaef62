package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kabayemedia/ticketing/internal/domain"
)

// TicketStats aggregates counts for the admin dashboard.
type TicketStats struct {
	TotalTickets int64
	PaidTickets  int64
	UsedTickets  int64
	Revenue      float64
}

// TicketRepository encapsulates ticket persistence. MarkUsed is the single
// shared-mutable write of the admission path and must stay a conditional
// update so concurrent scans of one token cannot both succeed.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByRef(ctx context.Context, ticketRef string) (*domain.Ticket, error)
	GetByToken(ctx context.Context, accessToken string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error)
	MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) (bool, error)
	RecordPaymentResult(ctx context.Context, ticketID string, state domain.PaymentState, paymentRef *string) error
	CountPaidByEvent(ctx context.Context, eventID string) (int64, error)
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_ref, access_token, owner_id, event_id, payment_state, qr_image_data)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, purchased_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketRef,
		ticket.AccessToken,
		ticket.OwnerID,
		ticket.EventID,
		ticket.PaymentState,
		ticket.QRImageData,
	).Scan(&ticket.ID, &ticket.PurchasedAt)
}

func (r *ticketRepository) GetByRef(ctx context.Context, ticketRef string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_ref, access_token, owner_id, event_id, payment_state,
               payment_ref, used, used_at, qr_image_data, purchased_at
        FROM tickets WHERE ticket_ref=$1`
	return r.fetchSingle(ctx, query, ticketRef)
}

func (r *ticketRepository) GetByToken(ctx context.Context, accessToken string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_ref, access_token, owner_id, event_id, payment_state,
               payment_ref, used, used_at, qr_image_data, purchased_at
        FROM tickets WHERE access_token=$1`
	return r.fetchSingle(ctx, query, accessToken)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketRef,
		&ticket.AccessToken,
		&ticket.OwnerID,
		&ticket.EventID,
		&ticket.PaymentState,
		&ticket.PaymentRef,
		&ticket.Used,
		&ticket.UsedAt,
		&ticket.QRImageData,
		&ticket.PurchasedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_ref, access_token, owner_id, event_id, payment_state,
               payment_ref, used, used_at, qr_image_data, purchased_at
        FROM tickets WHERE owner_id=$1
        ORDER BY purchased_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// MarkUsed flips used to true only if it is still false. The returned bool is
// false when another caller already transitioned the ticket.
func (r *ticketRepository) MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) (bool, error) {
	const query = `UPDATE tickets SET used=TRUE, used_at=$2 WHERE id=$1 AND used=FALSE`
	cmd, err := r.pool.Exec(ctx, query, ticketID, usedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// RecordPaymentResult settles a pending payment exactly once; settled rows
// are never rewritten.
func (r *ticketRepository) RecordPaymentResult(ctx context.Context, ticketID string, state domain.PaymentState, paymentRef *string) error {
	const query = `
        UPDATE tickets SET payment_state=$2, payment_ref=$3
        WHERE id=$1 AND payment_state='PENDING'`
	cmd, err := r.pool.Exec(ctx, query, ticketID, state, paymentRef)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) CountPaidByEvent(ctx context.Context, eventID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE event_id=$1 AND payment_state='PAID'`
	var count int64
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE payment_state='PAID'),
               COUNT(*) FILTER (WHERE used),
               COALESCE(SUM(e.price) FILTER (WHERE t.payment_state='PAID'), 0)
        FROM tickets t JOIN events e ON e.id = t.event_id`
	var stats TicketStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalTickets,
		&stats.PaidTickets,
		&stats.UsedTickets,
		&stats.Revenue,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketRef,
			&ticket.AccessToken,
			&ticket.OwnerID,
			&ticket.EventID,
			&ticket.PaymentState,
			&ticket.PaymentRef,
			&ticket.Used,
			&ticket.UsedAt,
			&ticket.QRImageData,
			&ticket.PurchasedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
