package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ClientRepository defines persistence access for ticket owners.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a Postgres-backed implementation.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (name, email, company, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		client.Name,
		client.Email,
		client.Company,
		client.PasswordHash,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `
        SELECT id, name, email, company, password_hash, created_at, updated_at
        FROM clients WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	const query = `
        SELECT id, name, email, company, password_hash, created_at, updated_at
        FROM clients WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *clientRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Company,
		&client.PasswordHash,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}
