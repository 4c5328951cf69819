package order

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrSuspended       = errors.New("account is suspended")
	ErrForbidden       = errors.New("not allowed to access this order")

	// -- Validation & Input --
	ErrInvalidShipping = errors.New("invalid shipping address")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("invalid order status")

	// -- Business Rules --
	ErrSelfPurchase      = errors.New("cannot purchase your own products")
	ErrCrossSeller       = errors.New("all products must belong to the same seller")
	ErrProductInactive   = errors.New("product is no longer available")
	ErrInsufficientStock = errors.New("insufficient product quantity")
	ErrIllegalTransition = errors.New("illegal status transition")

	// -- Resource State --
	ErrProductNotFound = errors.New("one or more products not found")
	ErrOrderNotFound   = errors.New("order not found")
)
