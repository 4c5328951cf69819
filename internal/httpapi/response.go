package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradehub-be/internal/dispute"
	"tradehub-be/internal/logger"
	"tradehub-be/internal/order"

	"go.uber.org/zap"
)

// Error kinds surfaced to clients. Persistence details never leak.
const (
	KindValidation    = "validation"
	KindUnauthorized  = "unauthenticated"
	KindAuthorization = "authorization"
	KindNotFound      = "not_found"
	KindConflict      = "conflict"
	KindPersistence   = "persistence"
)

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, code int, data any, message string) {
	writeJSON(w, code, Envelope{Success: true, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := classify(err)

	message := err.Error()
	if kind == KindPersistence {
		// Internal failures are logged with detail and reported generically.
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		message = "internal server error"
	}

	writeJSON(w, code, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: kind, Message: message},
	})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: KindValidation, Message: message},
	})
}

// classify maps domain sentinels onto the response taxonomy. Anything
// unrecognized is treated as a persistence failure.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, order.ErrInvalidShipping),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, dispute.ErrReasonTooShort),
		errors.Is(err, dispute.ErrInvalidContent),
		errors.Is(err, dispute.ErrInvalidResolution),
		errors.Is(err, dispute.ErrResolutionRequired):
		return http.StatusBadRequest, KindValidation

	case errors.Is(err, order.ErrUnauthenticated),
		errors.Is(err, dispute.ErrUnauthenticated):
		return http.StatusUnauthorized, KindUnauthorized

	case errors.Is(err, order.ErrSuspended),
		errors.Is(err, order.ErrForbidden),
		errors.Is(err, dispute.ErrSuspended),
		errors.Is(err, dispute.ErrForbidden),
		errors.Is(err, dispute.ErrNotBuyer),
		errors.Is(err, dispute.ErrAdminOnly):
		return http.StatusForbidden, KindAuthorization

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, dispute.ErrDisputeNotFound),
		errors.Is(err, dispute.ErrOrderNotFound):
		return http.StatusNotFound, KindNotFound

	case errors.Is(err, order.ErrSelfPurchase),
		errors.Is(err, order.ErrCrossSeller),
		errors.Is(err, order.ErrProductInactive),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, dispute.ErrDisputeExists),
		errors.Is(err, dispute.ErrOrderNotDelivered),
		errors.Is(err, dispute.ErrDisputeClosed):
		return http.StatusConflict, KindConflict
	}

	return http.StatusInternalServerError, KindPersistence
}
