package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a unique-constraint violation, e.g. two
	// concurrent first requests both trying to create the cart for one owner.
	ErrConflict = errors.New("conflict")
	// ErrInvalidQuantity is returned when a cart mutation receives a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrEmptyCart is returned when checkout is attempted on a cart with no
	// line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCurrencyMismatch is returned when a cart's lines carry more than
	// one currency; a checkout manifest is priced in exactly one.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// GatewayError wraps a payment-gateway failure so callers can map it to a
// 502 without inspecting provider-specific error types.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// StoreError wraps an unexpected data-store failure together with the
// operation that produced it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
