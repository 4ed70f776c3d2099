package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PayStatus string

const (
	StatusReady     PayStatus = "ready"
	StatusPaid      PayStatus = "paid"
	StatusCancelled PayStatus = "cancelled"
	StatusFailed    PayStatus = "failed"
)

const DefaultPayMethod = "card"

// Payment is one attempt to settle an order. Its ID doubles as the merchant
// reference handed to the gateway. Once IsPaidOK is set the row is final.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Name          string          `json:"name"`
	DesiredAmount int64           `json:"desired_amount"`
	BuyerName     string          `json:"buyer_name"`
	BuyerEmail    string          `json:"buyer_email"`
	PayMethod     string          `json:"pay_method"`
	PayStatus     PayStatus       `json:"pay_status"`
	IsPaidOK      bool            `json:"is_paid_ok"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	Version       int             `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Payment) MerchantUID() string {
	return p.ID.String()
}

// GatewayRecord is what the gateway reports for a merchant reference.
type GatewayRecord struct {
	GatewayID   string
	MerchantUID string
	Status      string
	Amount      int64
	PayMethod   string
	Metadata    json.RawMessage
}

type Buyer struct {
	Name  string
	Email string
}

// PayParams are handed to the client-side payment widget.
type PayParams struct {
	ShopID      string `json:"shop_id"`
	MerchantUID string `json:"merchant_uid"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	BuyerName   string `json:"buyer_name"`
	BuyerEmail  string `json:"buyer_email"`
	PayMethod   string `json:"pay_method"`
	NextURL     string `json:"next_url"`
}

// reconciliation is the state a reconcile run wants to persist.
type reconciliation struct {
	PayStatus PayStatus
	IsPaidOK  bool
	Metadata  json.RawMessage

	// OrderTo is applied only while the order is in one of OrderFrom.
	OrderTo   string
	OrderFrom []string
}

type WebhookEvent struct {
	Provider       string
	EventID        string
	EventType      string
	ExternalID     string
	Payload        json.RawMessage
	SignatureValid bool
}
