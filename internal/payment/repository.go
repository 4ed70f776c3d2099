package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListStaleReady(ctx context.Context, createdBefore time.Time, limit int) ([]Payment, error)
	// ApplyReconciliation writes the gateway outcome and the resulting order
	// transition in one transaction. It reports whether the order moved.
	ApplyReconciliation(ctx context.Context, p *Payment, rec reconciliation) (*Payment, bool, error)

	SaveWebhook(ctx context.Context, event WebhookEvent) (webhookID int64, isDuplicate bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `
	id, order_id, name, desired_amount, buyer_name, buyer_email, pay_method,
	pay_status, is_paid_ok, metadata, version, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*Payment, error) {
	var (
		p        Payment
		metadata []byte
	)
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Name,
		&p.DesiredAmount,
		&p.BuyerName,
		&p.BuyerEmail,
		&p.PayMethod,
		&p.PayStatus,
		&p.IsPaidOK,
		&metadata,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		p.Metadata = metadata
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("payment_id", p.ID.String()),
		zap.String("order_id", p.OrderID.String()),
	)

	// The insert only lands while the order is still payable, so a payment
	// confirmed after the caller's check blocks a second attempt.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (
			id, order_id, name, desired_amount, buyer_name, buyer_email, pay_method, pay_status
		)
		SELECT $1::uuid, $2::uuid, $3::text, $4::integer, $5::text, $6::text, $7::text, $8::text
		WHERE EXISTS (
			SELECT 1 FROM orders WHERE id = $2 AND status IN ($9, $10)
		)
		AND NOT EXISTS (
			SELECT 1 FROM payments WHERE order_id = $2 AND is_paid_ok
		)
		RETURNING version, created_at, updated_at
	`,
		p.ID, p.OrderID, p.Name, p.DesiredAmount, p.BuyerName, p.BuyerEmail, p.PayMethod, p.PayStatus,
		order.StatusRequested, order.StatusFailedPayment,
	).Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("order no longer payable")
		return order.ErrOrderNotPayable
	}
	if err != nil {
		log.Error("failed to create payment", zap.Error(err))
		return ErrFailedCreatePayment
	}

	log.Info("payment created", zap.Int64("desired_amount", p.DesiredAmount))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get payment",
			zap.String("layer", "repository"),
			zap.String("payment_id", id.String()),
			zap.Error(err),
		)
		return nil, ErrFailedGetPayment
	}
	return p, nil
}

// ListStaleReady returns unconfirmed attempts old enough to be worth a
// gateway lookup, oldest first.
func (r *repository) ListStaleReady(ctx context.Context, createdBefore time.Time, limit int) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE pay_status = $1 AND is_paid_ok = FALSE AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, StatusReady, createdBefore, limit)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list stale payments",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, ErrFailedGetPayment
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, ErrFailedGetPayment
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedGetPayment
	}

	return payments, nil
}

func (r *repository) ApplyReconciliation(ctx context.Context, p *Payment, rec reconciliation) (*Payment, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyReconciliation"),
		zap.String("payment_id", p.ID.String()),
		zap.Int("version", p.Version),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin tx", zap.Error(err))
		return nil, false, ErrFailedSavePayment
	}
	defer tx.Rollback()

	var metadata interface{}
	if len(rec.Metadata) > 0 {
		metadata = string(rec.Metadata)
	}

	// A confirmed payment is never rewritten.
	updated := *p
	err = tx.QueryRowContext(ctx, `
		UPDATE payments
		SET pay_status = $1,
			is_paid_ok = $2,
			metadata = COALESCE($3, metadata),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $4 AND version = $5 AND is_paid_ok = FALSE
		RETURNING version, updated_at
	`, rec.PayStatus, rec.IsPaidOK, metadata, p.ID, p.Version).
		Scan(&updated.Version, &updated.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return r.resolveConflict(ctx, p.ID)
	}
	if err != nil {
		log.Error("failed to update payment", zap.Error(err))
		return nil, false, ErrFailedSavePayment
	}
	updated.PayStatus = rec.PayStatus
	updated.IsPaidOK = rec.IsPaidOK
	updated.Metadata = rec.Metadata

	orderMoved := false
	if rec.OrderTo != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = ANY($3)
		`, rec.OrderTo, p.OrderID, pq.Array(rec.OrderFrom))
		if err != nil {
			log.Error("failed to transition order", zap.Error(err))
			return nil, false, ErrFailedSavePayment
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, false, ErrFailedSavePayment
		}
		orderMoved = affected > 0
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit reconciliation", zap.Error(err))
		return nil, false, ErrFailedSavePayment
	}

	log.Info("payment reconciled",
		zap.String("pay_status", string(updated.PayStatus)),
		zap.Bool("is_paid_ok", updated.IsPaidOK),
		zap.Bool("order_moved", orderMoved),
	)

	return &updated, orderMoved, nil
}

// resolveConflict handles a lost version race: a row that is already paid
// wins, anything else asks the caller to retry.
func (r *repository) resolveConflict(ctx context.Context, id uuid.UUID) (*Payment, bool, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current.IsPaidOK {
		return current, false, nil
	}

	logger.FromCtx(ctx).Warn("payment version conflict",
		zap.String("layer", "repository"),
		zap.String("payment_id", id.String()),
		zap.Int("version", current.Version),
	)
	return nil, false, ErrConcurrentUpdate
}

func (r *repository) SaveWebhook(ctx context.Context, event WebhookEvent) (int64, bool, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET received_at = NOW()
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		event.Provider,
		event.EventID,
		event.EventType,
		event.ExternalID,
		event.SignatureValid,
		string(event.Payload),
	).Scan(&id)

	if err != nil {
		// Already processed: nothing left to do. An unprocessed duplicate
		// returns its row id so the delivery is retried.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		logger.FromCtx(ctx).Error("failed to save webhook",
			zap.String("layer", "repository"),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return 0, false, ErrFailedSaveWebhook
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = NOW(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
