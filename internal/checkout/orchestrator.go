package checkout

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/khan1-ui/go-storefront/internal/cart"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/khan1-ui/go-storefront/internal/platform"
)

// PlatformAPI is the slice of the backend the orchestrator needs.
type PlatformAPI interface {
	CreateOrder(ctx context.Context, req platform.OrderRequest) (*domain.Order, error)
	CreatePaymentSession(ctx context.Context, orderID string) (string, error)
}

// Draft is the transient checkout state, consumed exactly once by
// PlaceOrder and discarded afterward.
type Draft struct {
	ShippingAddress *domain.Address      `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
}

// Result reports what a successful placement did. RedirectURL is set only
// for the card-redirect path; CartCleared is false there because clearing
// waits for the out-of-band payment confirmation.
type Result struct {
	Order       *domain.Order `json:"order"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	CartCleared bool          `json:"cart_cleared"`
}

// Orchestrator drives the cart → order → payment transition for one
// session. It holds no order state of its own between calls; nothing is
// mutated locally until the terminal success case.
type Orchestrator struct {
	cart     *cart.Container
	api      PlatformAPI
	notifier notify.Notifier

	placing atomic.Bool
}

func NewOrchestrator(c *cart.Container, api PlatformAPI, notifier notify.Notifier) *Orchestrator {
	return &Orchestrator{cart: c, api: api, notifier: notifier}
}

// Placing reports whether an order placement is currently in flight.
func (o *Orchestrator) Placing() bool {
	return o.placing.Load()
}

// PlaceOrder validates the draft against the current cart and submits the
// order. Cash-on-delivery clears the cart on success; card redirect leaves
// the cart intact so it survives abandonment of the external payment page.
// Re-entrant calls while one placement is outstanding are refused.
func (o *Orchestrator) PlaceOrder(ctx context.Context, draft Draft) (*Result, error) {
	if !o.placing.CompareAndSwap(false, true) {
		return nil, ErrPlacementInFlight
	}
	defer o.placing.Store(false)

	snapshot := o.cart.Snapshot()
	if err := validate(snapshot, draft); err != nil {
		return nil, err
	}

	req := platform.OrderRequest{
		Items:         make([]platform.OrderRequestItem, len(snapshot.Lines)),
		PaymentMethod: draft.PaymentMethod,
	}
	for i, line := range snapshot.Lines {
		req.Items[i] = platform.OrderRequestItem{ProductID: line.ProductID, Quantity: line.Quantity}
	}
	if snapshot.HasPhysical() {
		req.ShippingAddress = draft.ShippingAddress
	}

	order, err := o.api.CreateOrder(ctx, req)
	if err != nil {
		o.notifier.Notify(ctx, notify.LevelError, "Order failed")
		return nil, fmt.Errorf("create order: %w", err)
	}

	if draft.PaymentMethod == domain.PaymentCardRedirect {
		url, err := o.api.CreatePaymentSession(ctx, order.ID)
		if err != nil {
			o.notifier.Notify(ctx, notify.LevelError, "Could not start payment")
			return nil, fmt.Errorf("create payment session: %w", err)
		}
		// The cart is cleared later, when the payment confirmation for this
		// order arrives.
		return &Result{Order: order, RedirectURL: url}, nil
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The order went through; a stale cart entry is the lesser problem.
		log.Printf("clearing cart after order %s failed: %v", order.ID, err)
	}
	o.notifier.Notify(ctx, notify.LevelInfo, "Order placed successfully")

	return &Result{Order: order, CartCleared: true}, nil
}

// validate checks the placement preconditions. It runs before any network
// call; a violated precondition issues no request.
func validate(snapshot domain.Cart, draft Draft) error {
	if snapshot.IsEmpty() {
		return ErrEmptyCart
	}

	switch draft.PaymentMethod {
	case domain.PaymentCashOnDelivery, domain.PaymentCardRedirect:
	default:
		return ErrInvalidPayment
	}

	if snapshot.HasPhysical() {
		if draft.ShippingAddress == nil || !draft.ShippingAddress.Complete() {
			return ErrInvalidAddress
		}
	}
	return nil
}
