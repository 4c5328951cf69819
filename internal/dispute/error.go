package dispute

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrSuspended       = errors.New("account is suspended")
	ErrNotBuyer        = errors.New("only the order's buyer can open a dispute")
	ErrForbidden       = errors.New("not allowed to access this dispute")
	ErrAdminOnly       = errors.New("only an admin can resolve a dispute")

	// -- Validation & Input --
	ErrReasonTooShort     = errors.New("reason must be at least 3 characters")
	ErrInvalidContent     = errors.New("message content must be between 1 and 1000 characters")
	ErrInvalidResolution  = errors.New("invalid resolution status")
	ErrResolutionRequired = errors.New("resolution message is required")

	// -- Business Rules --
	ErrOrderNotDelivered = errors.New("disputes can only be opened for delivered orders")
	ErrDisputeExists     = errors.New("a dispute already exists for this order")
	ErrDisputeClosed     = errors.New("dispute is already in a terminal state")

	// -- Resource State --
	ErrDisputeNotFound = errors.New("dispute not found")
	ErrOrderNotFound   = errors.New("order not found")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
