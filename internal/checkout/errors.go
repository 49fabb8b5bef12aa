package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to order")
	ErrInvalidAddress    = errors.New("delivery address is incomplete")
	ErrInvalidPayment    = errors.New("unknown payment method")
	ErrPlacementInFlight = errors.New("order placement already in progress")
)
