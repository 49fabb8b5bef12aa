package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	timeout time.Duration
}

func NewCartHandler(timeout time.Duration) *CartHandler {
	return &CartHandler{timeout: timeout}
}

// AddItemRequestDTO carries the catalog snapshot the storefront page holds
// at the moment of the add, plus the requested quantity.
type AddItemRequestDTO struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO is the cart snapshot plus anything the engine wants the
// UI to toast, e.g. a stock clamp notice.
type CartResponseDTO struct {
	Cart     domain.Cart     `json:"cart"`
	Total    decimal.Decimal `json:"total"`
	Warnings []string        `json:"warnings,omitempty"`
}

func cartResponse(c domain.Cart) CartResponseDTO {
	return CartResponseDTO{Cart: c, Total: c.Total()}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Snapshot()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	ctx, collector := notify.WithCollector(ctx)

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product.id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	updated, err := s.Cart.AddLine(ctx, req.Product, req.Quantity)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	resp := cartResponse(updated)
	resp.Warnings = collector.Messages()
	respondJSON(w, http.StatusCreated, resp)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	updated, err := s.Cart.UpdateQuantity(ctx, productID, req.Quantity)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(updated))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	updated, err := s.Cart.RemoveLine(ctx, productID)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(updated))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	if err := s.Cart.Clear(ctx); err != nil {
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Snapshot()))
}
