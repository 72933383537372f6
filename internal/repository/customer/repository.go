package customer

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrConflict when the email is already taken.
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}
