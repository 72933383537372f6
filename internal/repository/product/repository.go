package product

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	CategorySlug string
	ActiveOnly   bool
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
