package order

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotPayable     = errors.New("order cannot be paid")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidLinePrice    = errors.New("product price below minimum")
	ErrOrderCreationFailed = errors.New("failed to create order")
	ErrFailedGetOrder      = errors.New("failed to get order")
	ErrFailedUpdateStatus  = errors.New("failed to update order status")
)
