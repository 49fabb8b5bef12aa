package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/khan1-ui/go-storefront/internal/cart"
	"github.com/khan1-ui/go-storefront/internal/cartstore"
	"github.com/khan1-ui/go-storefront/internal/checkout"
	"github.com/khan1-ui/go-storefront/internal/platform"
)

// Session is the per-user context: one cart container and one checkout
// orchestrator, created on first authenticated request and torn down at
// logout. Nothing here is shared between users.
type Session struct {
	UserID   string
	Role     string
	Cart     *cart.Container
	Checkout *checkout.Orchestrator
}

// Factory builds the cart container and checkout orchestrator for a user.
type Factory func(ownerID string) (*cart.Container, *checkout.Orchestrator)

// Registry maps authenticated users to their sessions. It also clears
// carts on behalf of the payment confirmation consumer, which may act for
// users with no live session.
type Registry struct {
	secret  []byte
	factory Factory
	store   cartstore.Store

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(secret []byte, factory Factory, store cartstore.Store) *Registry {
	return &Registry{
		secret:   secret,
		factory:  factory,
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Authenticate validates the bearer token and returns the user's session,
// creating it on first use. A fresh session always reloads the persisted
// cart, so a previous user's lines can never leak into a new login.
func (r *Registry) Authenticate(ctx context.Context, rawToken string) (*Session, error) {
	claims, err := ParseToken(r.secret, rawToken)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	s, ok := r.sessions[claims.UserID]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	container, orchestrator := r.factory(claims.UserID)
	// The reload may hit the platform API, which needs the caller's
	// credential to return that user's cart instead of the guest one.
	if err := container.Reload(platform.WithToken(ctx, rawToken)); err != nil {
		// Start from an empty cart rather than failing the login.
		log.Printf("cart reload for user %s failed: %v", claims.UserID, err)
	}

	s = &Session{
		UserID:   claims.UserID,
		Role:     claims.Role,
		Cart:     container,
		Checkout: orchestrator,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[claims.UserID]; ok {
		return existing, nil
	}
	r.sessions[claims.UserID] = s
	return s, nil
}

// Logout drops the session and empties its in-memory cart immediately. The
// persisted cart is left alone; it belongs to the user, not the session.
func (r *Registry) Logout(userID string) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		s.Cart.Reset()
	}
}

// ClearCart empties the cart of ownerID, live session or not. Called when
// a payment confirmation lands for a redirect order. Only local state is
// touched: the confirmation consumer holds no user credential, and the
// platform settles its own copy of the cart when it marks the order paid.
func (r *Registry) ClearCart(ctx context.Context, ownerID string) error {
	if err := r.store.Delete(ctx, ownerID); err != nil && !errors.Is(err, cartstore.ErrCartNotFound) {
		return err
	}

	r.mu.Lock()
	s, ok := r.sessions[ownerID]
	r.mu.Unlock()
	if ok {
		s.Cart.Reset()
	}
	return nil
}
