package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	ListAllWithOwner(ctx context.Context) ([]domain.TicketWithOwner, error)
	Save(ctx context.Context, ticket *domain.Ticket) error
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
        INSERT INTO tickets (owner_client_id, subject, content, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Subject,
		ticket.Content,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, owner_client_id, subject, content, status,
               has_operator_reply, operator_reply, replied_at, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Subject,
		&ticket.Content,
		&ticket.Status,
		&ticket.HasOperatorReply,
		&ticket.OperatorReply,
		&ticket.RepliedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	const query = `
        SELECT id, owner_client_id, subject, content, status,
               has_operator_reply, operator_reply, replied_at, created_at, updated_at
        FROM tickets WHERE owner_client_id=$1
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.OwnerID,
			&ticket.Subject,
			&ticket.Content,
			&ticket.Status,
			&ticket.HasOperatorReply,
			&ticket.OperatorReply,
			&ticket.RepliedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListAllWithOwner(ctx context.Context) ([]domain.TicketWithOwner, error) {
	const query = `
        SELECT t.id, t.owner_client_id, t.subject, t.content, t.status,
               t.has_operator_reply, t.operator_reply, t.replied_at, t.created_at, t.updated_at,
               c.name, c.email, c.company
        FROM tickets t
        JOIN clients c ON c.id = t.owner_client_id
        ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketWithOwner
	for rows.Next() {
		var entry domain.TicketWithOwner
		if err := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Subject,
			&entry.Content,
			&entry.Status,
			&entry.HasOperatorReply,
			&entry.OperatorReply,
			&entry.RepliedAt,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.OwnerName,
			&entry.OwnerEmail,
			&entry.OwnerCompany,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Save replaces the mutable ticket fields by id. Returns pgx.ErrNoRows
// when the id no longer exists.
func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, content=$2, status=$3,
            has_operator_reply=$4, operator_reply=$5, replied_at=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Content,
		ticket.Status,
		ticket.HasOperatorReply,
		ticket.OperatorReply,
		ticket.RepliedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}
