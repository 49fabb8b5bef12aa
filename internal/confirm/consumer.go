package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// CartClearer completes the deferred cart clear of the card-redirect path.
type CartClearer interface {
	ClearCart(ctx context.Context, ownerID string) error
}

// PaymentEvent is the payload the platform publishes when an external
// payment session resolves.
type PaymentEvent struct {
	OrderID string `json:"order_id"`
	OwnerID string `json:"owner_id"`
	Status  string `json:"status"`
}

const statusPaid = "paid"

// Consumer watches the payment-status topic. A redirect order leaves the
// cart untouched at placement time; the paid event arriving here is what
// finally clears it. Failed or abandoned payments keep the cart intact.
type Consumer struct {
	carts  CartClearer
	reader *kafka.Reader
}

func NewConsumer(carts CartClearer, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-status",
		GroupID:  "storefront-client",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{carts: carts, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading payment event: %v", err)
		return
	}

	if err := c.handleEvent(ctx, m.Value); err != nil {
		log.Printf("payment event skipped: %v", err)
	}
}

func (c *Consumer) handleEvent(ctx context.Context, value []byte) error {
	var event PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("parse payment event: %w", err)
	}
	if event.OrderID == "" || event.OwnerID == "" {
		return fmt.Errorf("payment event missing order or owner id")
	}

	if event.Status != statusPaid {
		log.Printf("payment for order %s resolved as %q, cart kept", event.OrderID, event.Status)
		return nil
	}

	if err := c.carts.ClearCart(ctx, event.OwnerID); err != nil {
		return fmt.Errorf("clear cart for owner %s: %w", event.OwnerID, err)
	}

	log.Printf("payment confirmed for order %s, cart cleared", event.OrderID)
	return nil
}
