package product

import "time"

type Status string

const (
	StatusActive   Status = "a"
	StatusSoldOut  Status = "s"
	StatusObsolete Status = "o"
	StatusInactive Status = "i"
)

// MinPrice is the lowest price the catalog accepts, in minor units.
const MinPrice int64 = 100

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive reports whether the product can be put in a cart or ordered.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}
