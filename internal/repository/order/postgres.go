package order

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

const orderColumns = `id::text, customer_id::text, status, total_cents, currency, COALESCE(payment_session_id, ''), payment_status,
       contact_name, contact_email, contact_address, contact_city, contact_postal, contact_phone, created_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, &domain.StoreError{Op: "order begin tx", Err: err}
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (customer_id, status, total_cents, currency, payment_session_id, payment_status,
                    contact_name, contact_email, contact_address, contact_city, contact_postal, contact_phone)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + orderColumns
	var res domain.Order
	if err := tx.QueryRow(ctx, q,
		o.CustomerID,
		o.Status,
		o.TotalCents,
		o.Currency,
		o.PaymentSessionID,
		o.PaymentStatus,
		o.Contact.Name,
		o.Contact.Email,
		o.Contact.Address,
		o.Contact.City,
		o.Contact.PostalCode,
		o.Contact.Phone,
	).Scan(
		&res.ID, &res.CustomerID, &res.Status, &res.TotalCents, &res.Currency, &res.PaymentSessionID, &res.PaymentStatus,
		&res.Contact.Name, &res.Contact.Email, &res.Contact.Address, &res.Contact.City, &res.Contact.PostalCode, &res.Contact.Phone,
		&res.CreatedAt,
	); err != nil {
		return nil, &domain.StoreError{Op: "order insert", Err: err}
	}

	for _, it := range o.Items {
		var item domain.OrderItem
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, name, unit_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, order_id::text, product_id::text, name, unit_price_cents, quantity
`, res.ID, it.ProductID, it.Name, it.UnitPriceCents, it.Quantity).Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.UnitPriceCents, &item.Quantity,
		); err != nil {
			return nil, &domain.StoreError{Op: "order insert item", Err: err}
		}
		res.Items = append(res.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &domain.StoreError{Op: "order commit", Err: err}
	}
	return &res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.Currency, &o.PaymentSessionID, &o.PaymentStatus,
		&o.Contact.Name, &o.Contact.Email, &o.Contact.Address, &o.Contact.City, &o.Contact.PostalCode, &o.Contact.Phone,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "order fetch", Err: err}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, name, unit_price_cents, quantity
FROM order_items
WHERE order_id = $1
`, o.ID)
	if err != nil {
		return nil, &domain.StoreError{Op: "order fetch items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPriceCents, &it.Quantity); err != nil {
			return nil, &domain.StoreError{Op: "order scan item", Err: err}
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "order fetch items", Err: err}
	}
	return &o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "order list", Err: err}
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.Currency, &o.PaymentSessionID, &o.PaymentStatus,
			&o.Contact.Name, &o.Contact.Email, &o.Contact.Address, &o.Contact.City, &o.Contact.PostalCode, &o.Contact.Phone,
			&o.CreatedAt,
		); err != nil {
			return nil, &domain.StoreError{Op: "order scan", Err: err}
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "order list", Err: err}
	}
	return result, nil
}
