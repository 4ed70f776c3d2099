package cart

import (
	"errors"

	"storefront-be/internal/product"
)

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Catalog --
	ErrProductNotFound  = product.ErrProductNotFound
	ErrProductNotActive = errors.New("product is not available for sale")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")

	// -- Database & Operation Failures --
	ErrFailedAddCartItem = errors.New("failed to add cart item")
	ErrFailedGetCart     = errors.New("failed to get cart")
	ErrFailedUpdateCart  = errors.New("failed to update cart")
	ErrFailedRemoveCart  = errors.New("failed to remove cart item")
	ErrFailedClearCart   = errors.New("failed to clear cart")
)
