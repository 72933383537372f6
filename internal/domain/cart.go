package domain

import "time"

// Cart is owned by exactly one of CustomerID or SessionID for its whole
// lifetime. It is created lazily on the first cart-affecting action and is
// never deleted by the cart core except when an anonymous cart is merged
// into a customer cart.
type Cart struct {
	ID         string     `json:"id"`
	CustomerID *string    `json:"customerId,omitempty"`
	SessionID  *string    `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Items      []CartItem `json:"items,omitempty"`
}

// CartItem holds a (product, quantity) pairing. At most one row exists per
// (cart, product); quantity accumulates instead of duplicating rows and is
// always >= 1.
type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the resolved owner of the current request: an authenticated
// customer or an anonymous browser session. Exactly one side is set.
type Identity struct {
	Customer    *Customer
	AnonymousID string
}

func (i Identity) Authenticated() bool {
	return i.Customer != nil
}
