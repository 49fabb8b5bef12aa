package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeDigital  ProductType = "digital"
	ProductTypePhysical ProductType = "physical"
)

// Product is the catalog snapshot available to the cart at mutation time.
// Stock is only meaningful for physical products.
type Product struct {
	ID      string          `json:"id"`
	StoreID string          `json:"store_id"`
	Title   string          `json:"title"`
	Type    ProductType     `json:"type"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
}

// CartLine is one product entry in a cart. At most one line exists per
// product. Stock carries the snapshot used for quantity clamping.
type CartLine struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Title     string          `json:"title"`
	Type      ProductType     `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the line items of one owner. All lines belong to a single
// store; OwnerStoreID is empty while the cart is empty.
type Cart struct {
	OwnerID      string     `json:"owner_id"`
	OwnerStoreID string     `json:"owner_store_id"`
	Lines        []CartLine `json:"lines"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total is derived, never stored. Empty cart totals to zero.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) HasPhysical() bool {
	for _, l := range c.Lines {
		if l.Type == ProductTypePhysical {
			return true
		}
	}
	return false
}

// FindLine returns the index of the line for productID, or -1.
func (c Cart) FindLine(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the backing slice.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}
