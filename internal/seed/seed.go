package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type categorySeed struct {
	Name        string
	Slug        string
	Description string
}

type productSeed struct {
	CategorySlug string
	Name         string
	Slug         string
	Description  string
	PriceCents   int64
	Currency     string
	ImageURL     string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []categorySeed{
		{Name: "Coffee", Slug: "coffee", Description: "Single-origin Indonesian beans"},
		{Name: "Tea", Slug: "tea", Description: "Loose-leaf teas"},
		{Name: "Brewing Gear", Slug: "brewing-gear", Description: "Manual brew equipment"},
	}
	categoryIDs := map[string]string{}
	for _, cat := range categories {
		id, err := upsertCategory(ctx, pool, cat)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", cat.Slug, err)
		}
		categoryIDs[cat.Slug] = id
	}

	products := []productSeed{
		{
			CategorySlug: "coffee",
			Name:         "Kopi Gayo",
			Slug:         "kopi-gayo",
			Description:  "Medium roast arabica from the Gayo highlands",
			PriceCents:   120000,
			Currency:     "idr",
			ImageURL:     "https://images.example.com/kopi-gayo.jpg",
		},
		{
			CategorySlug: "coffee",
			Name:         "Kopi Toraja",
			Slug:         "kopi-toraja",
			Description:  "Full-bodied Sulawesi arabica",
			PriceCents:   135000,
			Currency:     "idr",
			ImageURL:     "https://images.example.com/kopi-toraja.jpg",
		},
		{
			CategorySlug: "tea",
			Name:         "Teh Melati",
			Slug:         "teh-melati",
			Description:  "Jasmine-scented green tea",
			PriceCents:   45000,
			Currency:     "idr",
			ImageURL:     "https://images.example.com/teh-melati.jpg",
		},
		{
			CategorySlug: "brewing-gear",
			Name:         "V60 Dripper",
			Slug:         "v60-dripper",
			Description:  "Ceramic pour-over cone, 02 size",
			PriceCents:   185000,
			Currency:     "idr",
			ImageURL:     "https://images.example.com/v60.jpg",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.CategorySlug], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	return nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) (string, error) {
	const q = `
INSERT INTO categories (name, slug, description)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (category_id, name, slug, description, price_cents, currency, image_url, is_active)
VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7, true)
ON CONFLICT (slug) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, categoryID, p.Name, p.Slug, p.Description, p.PriceCents, p.Currency, p.ImageURL)
	return err
}
