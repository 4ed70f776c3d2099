package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is the immutable snapshot of a checkout. TotalAmount is computed once
// from the lines and never recomputed.
type Order struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uint      `json:"owner_id"`
	Name        string    `json:"name"`
	TotalAmount int64     `json:"total_amount"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lines    []OrderLine      `json:"lines,omitempty"`
	Payments []PaymentSummary `json:"payments,omitempty"`
	CanPay   bool             `json:"can_pay"`
}

// OrderLine keeps the product name and price as they were at checkout.
type OrderLine struct {
	ID        uint      `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

func (l OrderLine) Amount() int64 {
	return l.Price * int64(l.Quantity)
}

// PaymentSummary is the read-only view of a payment attempt shown with the order.
type PaymentSummary struct {
	ID            uuid.UUID `json:"id"`
	DesiredAmount int64     `json:"desired_amount"`
	PayStatus     string    `json:"pay_status"`
	IsPaidOK      bool      `json:"is_paid_ok"`
	CreatedAt     time.Time `json:"created_at"`
}

// snapshotProduct is the product row read inside the checkout transaction.
type snapshotProduct struct {
	ID     uint
	Name   string
	Price  int64
	Status string
}
