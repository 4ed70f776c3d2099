package handler

import (
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const retryAfterSeconds = "5"

var statusByError = []struct {
	err    error
	status int
}{
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{order.ErrEmptyCart, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},

	{cart.ErrProductNotFound, http.StatusNotFound},
	{cart.ErrCartItemNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{payment.ErrPaymentNotFound, http.StatusNotFound},
	{payment.ErrPaymentLookupFailed, http.StatusNotFound},
	{payment.ErrGatewayRecordNotFound, http.StatusNotFound},

	{order.ErrOrderNotPayable, http.StatusConflict},
	{order.ErrInvalidTransition, http.StatusConflict},
	{payment.ErrAmountMismatch, http.StatusConflict},
	{payment.ErrConcurrentUpdate, http.StatusConflict},

	{cart.ErrProductNotActive, http.StatusUnprocessableEntity},
	{order.ErrInvalidLinePrice, http.StatusUnprocessableEntity},

	{payment.ErrGatewayAuthFailed, http.StatusBadGateway},
	{payment.ErrGatewayRejected, http.StatusBadGateway},

	{payment.ErrGatewayUnreachable, http.StatusServiceUnavailable},
	{lock.ErrLockTimeout, http.StatusServiceUnavailable},
}

// StatusFor maps a domain error to the HTTP status it is reported with.
func StatusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		msg = "internal server error"
	}

	utils.WriteJSONError(w, msg, status)
}
