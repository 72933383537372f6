package product

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, category_id::text, name, slug, COALESCE(description, ''), price_cents, currency, COALESCE(image_url, ''), is_active, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	q := `
SELECT p.id::text, p.category_id::text, p.name, p.slug, COALESCE(p.description, ''), p.price_cents, p.currency, COALESCE(p.image_url, ''), p.is_active, p.created_at, p.updated_at
FROM products p
`
	var args []any
	if filter.CategorySlug != "" {
		q += `JOIN categories c ON c.id = p.category_id AND c.slug = $1
`
		args = append(args, filter.CategorySlug)
	}
	if filter.ActiveOnly {
		q += `WHERE p.is_active
`
	}
	q += `ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, &domain.StoreError{Op: "product list", Err: err}
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, &domain.StoreError{Op: "product scan", Err: err}
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, &domain.StoreError{Op: "product list", Err: err}
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.fetch(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.fetch(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, category_id, name, slug, description, price_cents, currency, image_url, is_active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9)
ON CONFLICT (slug) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + productColumns
	var res domain.Product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.ImageURL,
		product.IsActive,
	).Scan(&res.ID, &res.CategoryID, &res.Name, &res.Slug, &res.Description, &res.PriceCents, &res.Currency, &res.ImageURL, &res.IsActive, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", product.Slug, err)
		return nil, &domain.StoreError{Op: "product upsert", Err: err}
	}
	r.logger.Printf("product repo: upserted slug=%s id=%s", res.Slug, res.ID)
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return &domain.StoreError{Op: "product delete", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "product fetch", Err: err}
	}
	return &p, nil
}
