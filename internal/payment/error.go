package payment

import "errors"

var (
	// -- Gateway --
	ErrGatewayUnreachable    = errors.New("payment gateway unreachable")
	ErrGatewayRecordNotFound = errors.New("payment gateway has no record")
	ErrGatewayAuthFailed     = errors.New("payment gateway rejected credentials")
	ErrGatewayRejected       = errors.New("payment gateway rejected request")

	// -- Reconciliation --
	ErrPaymentLookupFailed = errors.New("payment lookup failed")
	ErrAmountMismatch      = errors.New("confirmed amount does not match order total")
	ErrConcurrentUpdate    = errors.New("payment updated concurrently")

	// -- Resource State --
	ErrPaymentNotFound = errors.New("payment not found")

	// -- Database & Operation Failures --
	ErrFailedCreatePayment = errors.New("failed to create payment")
	ErrFailedGetPayment    = errors.New("failed to get payment")
	ErrFailedSavePayment   = errors.New("failed to save payment")
	ErrFailedSaveWebhook   = errors.New("failed to save webhook")
)
