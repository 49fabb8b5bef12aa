package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/khan1-ui/go-storefront/internal/cart"
	"github.com/khan1-ui/go-storefront/internal/checkout"
	"github.com/khan1-ui/go-storefront/internal/platform"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleEngineError converts engine sentinels into the JSON error envelope
// the UI renders as toasts and inline notices.
func handleEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrCrossStoreConflict):
		respondError(w, http.StatusConflict, "cross_store_conflict",
			"You can only order from one store at a time")
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", "This product is out of stock")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, cart.ErrNotAdjustable):
		respondError(w, http.StatusUnprocessableEntity, "not_adjustable",
			"digital items are fixed at quantity 1")
	case errors.Is(err, cart.ErrMissingStore):
		respondError(w, http.StatusBadRequest, "missing_store", "product has no store")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", "item not found in cart")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "Cart is empty")
	case errors.Is(err, checkout.ErrInvalidAddress):
		respondError(w, http.StatusUnprocessableEntity, "invalid_address",
			"Delivery address required")
	case errors.Is(err, checkout.ErrInvalidPayment):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment method")
	case errors.Is(err, checkout.ErrPlacementInFlight):
		respondError(w, http.StatusConflict, "placement_in_flight",
			"an order is already being placed")
	case errors.Is(err, platform.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, "session_expired", "session expired, log in again")
	default:
		var apiErr *platform.APIError
		if errors.As(err, &apiErr) {
			respondError(w, http.StatusBadGateway, "upstream_rejected", apiErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
