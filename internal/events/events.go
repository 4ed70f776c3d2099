// Package events publishes order lifecycle notifications for downstream
// consumers such as fulfillment and mailers.
package events

import (
	"context"
	"time"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderPaid          Type = "order.paid"
	OrderPaymentFailed Type = "order.payment_failed"
)

type OrderEvent struct {
	Type       Type      `json:"type"`
	OrderID    string    `json:"order_id"`
	OwnerID    uint      `json:"owner_id,omitempty"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events at most once. Callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type noop struct{}

// NewNoop is used when no brokers are configured.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, OrderEvent) error { return nil }

func (noop) Close() error { return nil }
