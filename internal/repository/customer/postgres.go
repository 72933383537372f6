package customer

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, password_hash, name, role)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING id::text, email, password_hash, COALESCE(name, ''), role, created_at
`
	role := c.Role
	if role == "" {
		role = domain.RoleUser
	}
	var res domain.Customer
	err := r.pool.QueryRow(ctx, q, c.Email, c.PasswordHash, c.Name, string(role)).Scan(
		&res.ID, &res.Email, &res.PasswordHash, &res.Name, &res.Role, &res.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrConflict
		}
		return nil, &domain.StoreError{Op: "customer create", Err: err}
	}
	return &res, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.fetch(ctx, `
SELECT id::text, email, password_hash, COALESCE(name, ''), role, created_at
FROM customers
WHERE email = $1
`, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.fetch(ctx, `
SELECT id::text, email, password_hash, COALESCE(name, ''), role, created_at
FROM customers
WHERE id = $1
`, id)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, COALESCE(name, ''), role, created_at
FROM customers
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, &domain.StoreError{Op: "customer list", Err: err}
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.Role, &c.CreatedAt); err != nil {
			return nil, &domain.StoreError{Op: "customer scan", Err: err}
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "customer list", Err: err}
	}
	return result, nil
}

func (r *postgresRepo) fetch(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.Role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "customer fetch", Err: err}
	}
	return &c, nil
}
