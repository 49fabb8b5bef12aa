package cart

import "errors"

var (
	// ErrCrossStoreConflict rejects an add whose product belongs to a
	// different store than the cart's current owner store.
	ErrCrossStoreConflict = errors.New("cart can only hold items from one store at a time")

	ErrMissingStore    = errors.New("product has no store")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotAdjustable   = errors.New("digital items are fixed at quantity 1")
	ErrLineNotFound    = errors.New("item not found in cart")
	ErrOutOfStock      = errors.New("product is out of stock")
)
