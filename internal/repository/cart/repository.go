package cart

import (
	"context"

	"storefront/internal/domain"
)

// Owner identifies who a cart belongs to. Exactly one field is set.
type Owner struct {
	CustomerID *string
	SessionID  *string
}

// ItemDetail is a cart item joined with the catalog fields needed to render
// the cart without a second round trip.
type ItemDetail struct {
	Item           domain.CartItem
	Name           string
	UnitPriceCents int64
	Currency       string
	ImageURL       string
	IsActive       bool
}

type Repository interface {
	// Create inserts a cart for the owner. Returns domain.ErrConflict when
	// another request created one concurrently; callers retry the lookup.
	Create(ctx context.Context, owner Owner) (*domain.Cart, error)
	GetByOwner(ctx context.Context, owner Owner) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
	// AssignCustomer rebinds an anonymous cart to a customer, clearing the
	// session owner. Returns domain.ErrConflict if the customer already
	// owns a cart.
	AssignCustomer(ctx context.Context, cartID, customerID string) error

	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
	ListItemDetails(ctx context.Context, cartID string) ([]ItemDetail, error)
	// UpsertItem accumulates: an existing (cart, product) row gains addQty,
	// otherwise a new row is inserted. Single atomic statement, safe under
	// concurrent adds for the same product.
	UpsertItem(ctx context.Context, cartID, productID string, addQty int64) (*domain.CartItem, error)
	// SetItemQuantity replaces the quantity with the exact value given.
	SetItemQuantity(ctx context.Context, cartID, itemID string, qty int64) error
	DeleteItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
