package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, customer_id::text, session_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, owner Owner) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (customer_id, session_id)
VALUES ($1, $2)
RETURNING ` + cartColumns
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, q, owner.CustomerID, owner.SessionID).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrConflict
		}
		return nil, &domain.StoreError{Op: "cart create", Err: err}
	}
	return &cart, nil
}

func (r *postgresRepo) GetByOwner(ctx context.Context, owner Owner) (*domain.Cart, error) {
	switch {
	case owner.CustomerID != nil:
		return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE customer_id = $1`, *owner.CustomerID)
	case owner.SessionID != nil:
		return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE session_id = $1`, *owner.SessionID)
	default:
		return nil, domain.ErrNotFound
	}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return &domain.StoreError{Op: "cart delete", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AssignCustomer(ctx context.Context, cartID, customerID string) error {
	const q = `
UPDATE carts
SET customer_id = $1,
    session_id = NULL,
    updated_at = now()
WHERE id = $2 AND session_id IS NOT NULL
`
	cmd, err := r.pool.Exec(ctx, q, customerID, cartID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return &domain.StoreError{Op: "cart assign customer", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	const q = `
SELECT id::text, cart_id::text, product_id::text, quantity, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, &domain.StoreError{Op: "cart list items", Err: err}
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, &domain.StoreError{Op: "cart scan item", Err: err}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "cart list items", Err: err}
	}
	return items, nil
}

func (r *postgresRepo) ListItemDetails(ctx context.Context, cartID string) ([]ItemDetail, error) {
	const q = `
SELECT ci.id::text, ci.cart_id::text, ci.product_id::text, ci.quantity, ci.created_at, ci.updated_at,
       p.name, p.price_cents, p.currency, COALESCE(p.image_url, ''), p.is_active
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, &domain.StoreError{Op: "cart list item details", Err: err}
	}
	defer rows.Close()

	var details []ItemDetail
	for rows.Next() {
		var d ItemDetail
		if err := rows.Scan(
			&d.Item.ID, &d.Item.CartID, &d.Item.ProductID, &d.Item.Quantity, &d.Item.CreatedAt, &d.Item.UpdatedAt,
			&d.Name, &d.UnitPriceCents, &d.Currency, &d.ImageURL, &d.IsActive,
		); err != nil {
			return nil, &domain.StoreError{Op: "cart scan item detail", Err: err}
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "cart list item details", Err: err}
	}
	return details, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, cartID, productID string, addQty int64) (*domain.CartItem, error) {
	if addQty < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    updated_at = now()
RETURNING id::text, cart_id::text, product_id::text, quantity, created_at, updated_at
`
	var it domain.CartItem
	err := r.pool.QueryRow(ctx, q, cartID, productID, addQty).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, &domain.StoreError{Op: "cart upsert item", Err: err}
	}
	return &it, nil
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, itemID string, qty int64) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	const q = `
UPDATE cart_items
SET quantity = $1,
    updated_at = now()
WHERE id = $2 AND cart_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, qty, itemID, cartID)
	if err != nil {
		return &domain.StoreError{Op: "cart set item quantity", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteItem(ctx context.Context, cartID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return &domain.StoreError{Op: "cart delete item", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return &domain.StoreError{Op: "cart clear", Err: err}
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, query string, arg any) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "cart fetch", Err: err}
	}
	return &cart, nil
}
