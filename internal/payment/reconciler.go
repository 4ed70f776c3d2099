package payment

import (
	"context"
	"errors"
	"fmt"

	"storefront-be/internal/events"
	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"

	"go.uber.org/zap"
)

// ReconcileStats counts outcomes across every reconciler in the process.
var ReconcileStats metrics.Reconcile

// Reconciler pulls the authoritative status from the gateway and merges it
// into the local payment and its order.
type Reconciler interface {
	Reconcile(ctx context.Context, p *Payment) (*Payment, error)
}

type reconciler struct {
	repo      Repository
	gateway   Gateway
	locker    lock.Locker
	publisher events.Publisher
}

func NewReconciler(repo Repository, gateway Gateway, locker lock.Locker, publisher events.Publisher) Reconciler {
	return &reconciler{
		repo:      repo,
		gateway:   gateway,
		locker:    locker,
		publisher: publisher,
	}
}

// Reconcile is idempotent. A payment already confirmed paid is returned
// unchanged without contacting the gateway. A paid status whose amount differs
// from the desired amount is stored with IsPaidOK false and reported as
// ErrAmountMismatch.
func (r *reconciler) Reconcile(ctx context.Context, p *Payment) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "reconciler"),
		zap.String("payment_id", p.ID.String()),
		zap.String("order_id", p.OrderID.String()),
	)

	unlock, err := r.locker.Lock(ctx, lock.PaymentKey(p.ID.String()))
	if err != nil {
		log.Error("failed to acquire payment lock", zap.Error(err))
		return nil, err
	}
	defer unlock()

	// Re-read under the lock; the caller's copy may be stale.
	current, err := r.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if current.IsPaidOK {
		log.Debug("payment already confirmed")
		return current, nil
	}

	timer := metrics.StartTimer()
	record, err := r.gateway.Lookup(ctx, current.MerchantUID())
	log.Debug("gateway lookup finished", zap.Duration("duration", timer.Duration()))
	if err != nil {
		ReconcileStats.LookupErrors.Inc()
		if errors.Is(err, ErrGatewayRecordNotFound) {
			log.Warn("gateway has no record for payment")
			return nil, fmt.Errorf("%w: %w", ErrPaymentLookupFailed, err)
		}
		log.Error("gateway lookup failed", zap.Error(err))
		return nil, err
	}

	status, known := MapStatus(record.Status)
	if !known {
		log.Warn("unknown gateway status, keeping payment open", zap.String("gateway_status", record.Status))
	}

	amountMatches := record.Amount == current.DesiredAmount
	rec := reconciliation{
		PayStatus: status,
		IsPaidOK:  status == StatusPaid && amountMatches,
		Metadata:  record.Metadata,
	}

	switch {
	case rec.IsPaidOK:
		rec.OrderTo = string(order.StatusPaid)
		rec.OrderFrom = []string{string(order.StatusRequested), string(order.StatusFailedPayment)}
	case status == StatusFailed || status == StatusCancelled:
		rec.OrderTo = string(order.StatusFailedPayment)
		rec.OrderFrom = []string{string(order.StatusRequested)}
	}

	updated, orderMoved, err := r.repo.ApplyReconciliation(ctx, current, rec)
	if err != nil {
		if errors.Is(err, ErrConcurrentUpdate) {
			ReconcileStats.Conflicts.Inc()
		}
		return nil, err
	}

	if orderMoved {
		r.publish(ctx, updated, rec)
	}

	switch {
	case rec.IsPaidOK:
		ReconcileStats.Paid.Inc()
	case status == StatusPaid:
		ReconcileStats.AmountMismatch.Inc()
	case status == StatusFailed || status == StatusCancelled:
		ReconcileStats.Failed.Inc()
	default:
		ReconcileStats.Pending.Inc()
	}

	if status == StatusPaid && !amountMatches {
		log.Error("gateway confirmed a different amount, manual review required",
			zap.Int64("desired_amount", current.DesiredAmount),
			zap.Int64("confirmed_amount", record.Amount),
			zap.String("gateway_id", record.GatewayID),
		)
		return updated, ErrAmountMismatch
	}

	return updated, nil
}

func (r *reconciler) publish(ctx context.Context, p *Payment, rec reconciliation) {
	eventType := events.OrderPaymentFailed
	if rec.IsPaidOK {
		eventType = events.OrderPaid
	}

	err := r.publisher.Publish(ctx, events.OrderEvent{
		Type:      eventType,
		OrderID:   p.OrderID.String(),
		PaymentID: p.ID.String(),
		Amount:    p.DesiredAmount,
		Status:    rec.OrderTo,
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("order event not published",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}
