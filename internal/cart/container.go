package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/khan1-ui/go-storefront/internal/cartstore"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/shopspring/decimal"
)

// Container owns the cart of one session and applies mutations atomically
// with respect to the cart invariants: all lines share one store, physical
// quantities stay within [1, stock], digital lines are pinned at quantity 1.
// Every successful mutation is persisted through the Syncer before the new
// state becomes visible to readers.
type Container struct {
	ownerID  string
	syncer   Syncer
	notifier notify.Notifier

	mu      sync.RWMutex
	cart    domain.Cart
	syncing atomic.Bool
}

func NewContainer(ownerID string, syncer Syncer, notifier notify.Notifier) *Container {
	return &Container{
		ownerID:  ownerID,
		syncer:   syncer,
		notifier: notifier,
		cart:     domain.Cart{OwnerID: ownerID},
	}
}

// Snapshot returns a copy of the current cart.
func (c *Container) Snapshot() domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Clone()
}

func (c *Container) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Total()
}

func (c *Container) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.IsEmpty()
}

// Syncing reports whether a persistence round-trip is currently in flight.
func (c *Container) Syncing() bool {
	return c.syncing.Load()
}

// AddLine puts quantity units of product into the cart. An empty cart
// adopts the product's store; a non-empty cart rejects products from any
// other store. Quantities of physical products clamp to available stock
// with a warning; digital products hold exactly one unit.
func (c *Container) AddLine(ctx context.Context, product domain.Product, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	if product.StoreID == "" {
		return domain.Cart{}, ErrMissingStore
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cart.IsEmpty() && c.cart.OwnerStoreID != product.StoreID {
		return domain.Cart{}, ErrCrossStoreConflict
	}

	next := c.cart.Clone()
	var warning string

	i := next.FindLine(product.ID)
	if i >= 0 && next.Lines[i].Type == domain.ProductTypeDigital {
		// A digital product is a single license, not stackable inventory.
		c.notifier.Notify(ctx, notify.LevelWarning,
			fmt.Sprintf("%s is already in your cart", product.Title))
		return c.cart.Clone(), nil
	}

	// A sold-out snapshot rejects the add whether or not the line already
	// exists; clamping an existing line against zero stock would drop its
	// quantity below one.
	if product.Type == domain.ProductTypePhysical && product.Stock < 1 {
		return domain.Cart{}, ErrOutOfStock
	}

	var line domain.CartLine
	if i >= 0 {
		line = next.Lines[i]
		line.Stock = product.Stock // refresh the stock snapshot
		line.Quantity += quantity
	} else {
		line = domain.CartLine{
			ProductID: product.ID,
			StoreID:   product.StoreID,
			Title:     product.Title,
			Type:      product.Type,
			UnitPrice: product.Price,
			Stock:     product.Stock,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		}
	}

	if line.Type == domain.ProductTypeDigital {
		line.Quantity = 1
	} else if line.Quantity > line.Stock {
		line.Quantity = line.Stock
		warning = fmt.Sprintf("only %d of %s in stock", line.Stock, line.Title)
	}

	if i >= 0 {
		next.Lines[i] = line
	} else {
		next.Lines = append(next.Lines, line)
	}
	next.OwnerStoreID = product.StoreID
	next.UpdatedAt = time.Now()

	snapshot, err := c.apply(ctx, Mutation{Op: OpUpsert, ProductID: line.ProductID, Quantity: line.Quantity}, &next)
	if err != nil {
		return domain.Cart{}, err
	}

	if warning != "" {
		c.notifier.Notify(ctx, notify.LevelWarning, warning)
	}
	return snapshot, nil
}

// UpdateQuantity sets the quantity of an existing physical line, clamping
// silently to [1, stock]. Digital lines are not adjustable.
func (c *Container) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.cart.FindLine(productID)
	if i < 0 {
		return domain.Cart{}, ErrLineNotFound
	}
	if c.cart.Lines[i].Type == domain.ProductTypeDigital {
		return domain.Cart{}, ErrNotAdjustable
	}

	next := c.cart.Clone()
	if quantity > next.Lines[i].Stock {
		quantity = next.Lines[i].Stock
	}
	next.Lines[i].Quantity = quantity
	next.UpdatedAt = time.Now()

	return c.apply(ctx, Mutation{Op: OpUpsert, ProductID: productID, Quantity: quantity}, &next)
}

// RemoveLine drops the line for productID. Removing an absent product is a
// no-op, not an error. Removing the last line clears store ownership.
func (c *Container) RemoveLine(ctx context.Context, productID string) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.cart.FindLine(productID)
	if i < 0 {
		return c.cart.Clone(), nil
	}

	next := c.cart.Clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	if len(next.Lines) == 0 {
		next.OwnerStoreID = ""
	}
	next.UpdatedAt = time.Now()

	return c.apply(ctx, Mutation{Op: OpRemove, ProductID: productID}, &next)
}

// Clear empties the cart unconditionally and resets store ownership.
func (c *Container) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := domain.Cart{OwnerID: c.ownerID, UpdatedAt: time.Now()}
	_, err := c.apply(ctx, Mutation{Op: OpClear}, &next)
	return err
}

// Reload replaces the in-memory state with the persisted cart, called on
// session start and on login. A missing or corrupt entry means an empty
// cart; a failed fetch is surfaced but still leaves the cart empty rather
// than carrying over a previous user's lines.
func (c *Container) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart = domain.Cart{OwnerID: c.ownerID}

	c.syncing.Store(true)
	loaded, err := c.syncer.Load(ctx, c.ownerID)
	c.syncing.Store(false)

	if err != nil {
		if errors.Is(err, cartstore.ErrCartNotFound) {
			return nil
		}
		return fmt.Errorf("reload cart: %w", err)
	}

	c.adoptLocked(loaded)
	return nil
}

// Reset drops the in-memory state immediately without touching persisted
// data. Called on logout.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = domain.Cart{OwnerID: c.ownerID}
}

// apply persists the mutation and adopts the snapshot the syncer returns.
// On failure the previous state is left exactly as it was. Callers hold the
// write lock; responses therefore land in issue order, which is the
// documented last-write-wins policy for this single-user client.
func (c *Container) apply(ctx context.Context, mut Mutation, next *domain.Cart) (domain.Cart, error) {
	c.syncing.Store(true)
	snapshot, err := c.syncer.Apply(ctx, mut, next)
	c.syncing.Store(false)

	if err != nil {
		return domain.Cart{}, err
	}

	c.adoptLocked(snapshot)
	return c.cart.Clone(), nil
}

func (c *Container) adoptLocked(snapshot *domain.Cart) {
	adopted := snapshot.Clone()
	adopted.OwnerID = c.ownerID
	if len(adopted.Lines) == 0 {
		adopted.OwnerStoreID = ""
	} else if adopted.OwnerStoreID == "" {
		adopted.OwnerStoreID = adopted.Lines[0].StoreID
	}
	c.cart = adopted
}
