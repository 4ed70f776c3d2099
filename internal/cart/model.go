package cart

import (
	"time"

	"storefront-be/internal/product"
)

// CartLine is one (owner, product) row. Re-adding a product merges quantities.
type CartLine struct {
	ID        uint      `json:"id"`
	OwnerID   uint      `json:"owner_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartRow is a cart line joined with the live product row.
type CartRow struct {
	LineID        uint
	ProductID     uint
	ProductName   string
	UnitPrice     int64
	ProductStatus product.Status
	Quantity      int
	UpdatedAt     time.Time
}

type CartItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Amount    int64  `json:"amount"`
	Active    bool   `json:"active"`
}

type Cart struct {
	OwnerID uint       `json:"owner_id"`
	Items   []CartItem `json:"items"`
	Total   int64      `json:"total_amount"`
}

// LineUpdate edits or deletes one line of the cart.
type LineUpdate struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
	Delete    bool `json:"delete"`
}
