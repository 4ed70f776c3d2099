// Package lock serializes work per key: one owner's cart, one order's payment
// start, one payment's reconciliation.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrLockTimeout = errors.New("lock not acquired")

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func OwnerKey(ownerID uint) string { return fmt.Sprintf("owner:%d", ownerID) }

func OrderKey(orderID string) string { return "order:" + orderID }

func PaymentKey(paymentID string) string { return "payment:" + paymentID }
