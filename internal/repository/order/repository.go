package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}
