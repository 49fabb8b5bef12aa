package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type tokenKey struct{}

// WithToken attaches the caller's bearer credential to the context. Every
// backend request carries it; requests without one go out unauthenticated.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}

type idempotencyKey struct{}

func withIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKey{}).(string); ok {
		return key
	}
	return ""
}

// Client is the JSON-over-HTTP client for the platform backend API. All
// calls run through a circuit breaker so a struggling backend fails fast
// instead of stacking up requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "platform-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
	}
}

type cartItemDTO struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
}

func (dto cartDTO) toDomain() *domain.Cart {
	cart := &domain.Cart{Lines: make([]domain.CartLine, len(dto.Items))}
	for i, item := range dto.Items {
		cart.Lines[i] = domain.CartLine{
			ProductID: item.Product.ID,
			StoreID:   item.Product.StoreID,
			Title:     item.Product.Title,
			Type:      item.Product.Type,
			UnitPrice: item.Product.Price,
			Stock:     item.Product.Stock,
			Quantity:  item.Quantity,
		}
	}
	if len(cart.Lines) > 0 {
		cart.OwnerStoreID = cart.Lines[0].StoreID
	}
	return cart
}

// FetchCart returns the server-held cart of the authenticated user. Guests
// get an empty cart.
func (c *Client) FetchCart(ctx context.Context) (*domain.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

type setCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SetCartItem sets the absolute quantity of one cart line and returns the
// server's updated snapshot.
func (c *Client) SetCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	var dto cartDTO
	body := setCartItemRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart", body, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*domain.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodDelete, "/cart/"+productID, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

func (c *Client) ClearCart(ctx context.Context) (*domain.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodDelete, "/cart", nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

type OrderRequestItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	Items           []OrderRequestItem   `json:"items"`
	ShippingAddress *domain.Address      `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
}

// CreateOrder submits the cart's line items for order placement and returns
// the backend's order echo. Each call carries a fresh idempotency key so the
// backend can deduplicate an ambiguous resend.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	var order domain.Order
	ctx = withIdempotencyKey(ctx, uuid.NewString())
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type paymentSessionRequest struct {
	OrderID string `json:"order_id"`
}

type paymentSessionResponse struct {
	URL string `json:"url"`
}

// CreatePaymentSession asks the payment collaborator for a hosted payment
// page keyed by the order and returns the redirect URL.
func (c *Client) CreatePaymentSession(ctx context.Context, orderID string) (string, error) {
	var resp paymentSessionResponse
	body := paymentSessionRequest{OrderID: orderID}
	if err := c.do(ctx, http.MethodPost, "/payment/create-session", body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := idempotencyKeyFromContext(ctx); key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		// 5xx counts as a breaker failure; 4xx is a caller problem.
		if resp.StatusCode >= http.StatusInternalServerError {
			apiErr := &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
			resp.Body.Close()
			return nil, apiErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("platform api unavailable: %w", err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("platform api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeErrorMessage(body io.Reader) string {
	var er errorResponse
	if err := json.NewDecoder(body).Decode(&er); err != nil {
		return ""
	}
	if er.Message != "" {
		return er.Message
	}
	return er.Error
}
