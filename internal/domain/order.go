package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCardRedirect   PaymentMethod = "card_redirect"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Address is the delivery address collected at checkout. Required whenever
// the cart contains a physical line.
type Address struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
}

const minPhoneLen = 10

// Complete reports whether all four fields are filled in and the phone
// number is long enough to be dialable.
func (a Address) Complete() bool {
	if strings.TrimSpace(a.Name) == "" ||
		strings.TrimSpace(a.AddressLine) == "" ||
		strings.TrimSpace(a.City) == "" {
		return false
	}
	return len(strings.TrimSpace(a.Phone)) >= minPhoneLen
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is the backend's echo of a placed order, enough to render a
// confirmation and invoice. The engine never stores orders itself.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
