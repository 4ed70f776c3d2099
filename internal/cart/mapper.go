package cart

import "storefront-be/internal/product"

// MapRowsToCart prices every line against the live product price.
func MapRowsToCart(ownerID uint, rows []CartRow) *Cart {
	c := &Cart{
		OwnerID: ownerID,
		Items:   make([]CartItem, 0, len(rows)),
	}

	for _, r := range rows {
		amount := r.UnitPrice * int64(r.Quantity)
		c.Items = append(c.Items, CartItem{
			ProductID: r.ProductID,
			Name:      r.ProductName,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			Amount:    amount,
			Active:    r.ProductStatus == product.StatusActive,
		})
		c.Total += amount
	}

	return c
}
