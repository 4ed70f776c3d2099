package order

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateFromCart(ctx context.Context, ownerID uint, lines []cart.CartLine) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]Order, error)
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]PaymentSummary, error)
	HasPaidPayment(ctx context.Context, orderID uuid.UUID) (bool, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateFromCart snapshots the given cart lines into an order inside one
// REPEATABLE READ transaction. Prices and names are those visible at
// transaction start; the converted cart lines are deleted in the same
// transaction so a cart cannot be converted twice.
func (r *repository) CreateFromCart(ctx context.Context, ownerID uint, lines []cart.CartLine) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateFromCart"),
		zap.Int("line_count", len(lines)),
	)

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		log.Error("failed to begin tx", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}
	defer tx.Rollback()

	// 1. Snapshot product rows
	productIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, int64(l.ProductID))
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, price, status
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(productIDs))
	if err != nil {
		log.Error("failed to read products", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}

	products := make(map[uint]snapshotProduct, len(lines))
	for rows.Next() {
		var p snapshotProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Status); err != nil {
			rows.Close()
			log.Error("failed to scan product", zap.Error(err))
			return nil, ErrOrderCreationFailed
		}
		products[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Error("product rows iteration failed", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}

	// 2. Build lines from the snapshot
	order := &Order{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Status:  StatusRequested,
		Lines:   make([]OrderLine, 0, len(lines)),
	}
	cartLineIDs := make([]int64, 0, len(lines))

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			log.Warn("product vanished during checkout", zap.Uint("product_id", l.ProductID))
			return nil, product.ErrProductNotFound
		}
		if product.Status(p.Status) != product.StatusActive {
			log.Warn("product not active", zap.Uint("product_id", p.ID), zap.String("status", p.Status))
			return nil, cart.ErrProductNotActive
		}
		if p.Price < product.MinPrice {
			log.Warn("product price below minimum", zap.Uint("product_id", p.ID), zap.Int64("price", p.Price))
			return nil, ErrInvalidLinePrice
		}
		if l.Quantity < 1 {
			return nil, cart.ErrInvalidQuantity
		}

		order.Lines = append(order.Lines, OrderLine{
			OrderID:   order.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
		})
		cartLineIDs = append(cartLineIDs, int64(l.ID))
	}

	order.TotalAmount = sumLines(order.Lines)
	order.Name = BuildName(order.Lines)

	// 3. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, owner_id, name, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, order.ID, order.OwnerID, order.Name, order.TotalAmount, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}

	// 4. Insert order lines
	for i := range order.Lines {
		line := &order.Lines[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, order.ID, line.ProductID, line.Name, line.Price, line.Quantity).Scan(&line.ID)
		if err != nil {
			log.Error("failed to insert order line", zap.Uint("product_id", line.ProductID), zap.Error(err))
			return nil, ErrOrderCreationFailed
		}
	}

	// 5. Consume the cart lines
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM cart_lines
		WHERE owner_id = $1 AND id = ANY($2)
	`, ownerID, pq.Array(cartLineIDs)); err != nil {
		log.Error("failed to clear converted cart lines", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return nil, ErrOrderCreationFailed
	}

	log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.String("order_id", id.String()),
	)

	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.OwnerID, &o.Name, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to get order", zap.Error(err))
		return nil, ErrFailedGetOrder
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		log.Error("failed to get order lines", zap.Error(err))
		return nil, ErrFailedGetOrder
	}
	defer rows.Close()

	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.Price, &l.Quantity); err != nil {
			log.Error("failed to scan order line", zap.Error(err))
			return nil, ErrFailedGetOrder
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedGetOrder
	}

	return &o, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uint) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, total_amount, status, created_at, updated_at
		FROM orders
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, ErrFailedGetOrder
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, ErrFailedGetOrder
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedGetOrder
	}

	return orders, nil
}

func (r *repository) ListPayments(ctx context.Context, orderID uuid.UUID) ([]PaymentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, desired_amount, pay_status, is_paid_ok, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list order payments",
			zap.String("layer", "repository"),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, ErrFailedGetOrder
	}
	defer rows.Close()

	var payments []PaymentSummary
	for rows.Next() {
		var p PaymentSummary
		if err := rows.Scan(&p.ID, &p.DesiredAmount, &p.PayStatus, &p.IsPaidOK, &p.CreatedAt); err != nil {
			return nil, ErrFailedGetOrder
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedGetOrder
	}

	return payments, nil
}

func (r *repository) HasPaidPayment(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payments WHERE order_id = $1 AND is_paid_ok = TRUE
		)
	`, orderID).Scan(&exists)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to check paid payments",
			zap.String("layer", "repository"),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return false, ErrFailedGetOrder
	}
	return exists, nil
}

// AdvanceStatus moves the order only if it is still in the expected status.
func (r *repository) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AdvanceStatus"),
		zap.String("order_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return ErrFailedUpdateStatus
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ErrFailedUpdateStatus
	}
	if affected == 0 {
		log.Warn("order status changed concurrently")
		return ErrInvalidTransition
	}

	return nil
}
