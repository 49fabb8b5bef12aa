package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/khan1-ui/go-storefront/internal/checkout"
	"github.com/khan1-ui/go-storefront/internal/session"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	var draft checkout.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := s.Checkout.PlaceOrder(ctx, draft)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	h.registry.Logout(s.UserID)
	w.WriteHeader(http.StatusNoContent)
}
