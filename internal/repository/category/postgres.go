package category

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id::text, name, slug, COALESCE(description, ''), created_at
FROM categories
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, &domain.StoreError{Op: "category list", Err: err}
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, &domain.StoreError{Op: "category scan", Err: err}
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "category list", Err: err}
	}
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	const q = `
SELECT id::text, name, slug, COALESCE(description, ''), created_at
FROM categories
WHERE slug = $1
`
	var c domain.Category
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "category fetch", Err: err}
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, slug, description)
VALUES ($1, $2, NULLIF($3, ''))
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description
RETURNING id::text, name, slug, COALESCE(description, ''), created_at
`
	var res domain.Category
	err := r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description).Scan(&res.ID, &res.Name, &res.Slug, &res.Description, &res.CreatedAt)
	if err != nil {
		return nil, &domain.StoreError{Op: "category upsert", Err: err}
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return &domain.StoreError{Op: "category delete", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
