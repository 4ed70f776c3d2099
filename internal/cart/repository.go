package cart

import (
	"context"
	"database/sql"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Add(ctx context.Context, ownerID, productID uint, quantity int) (*CartLine, error)
	List(ctx context.Context, ownerID uint) ([]CartRow, error)
	Lines(ctx context.Context, ownerID uint) ([]CartLine, error)
	Update(ctx context.Context, ownerID uint, updates []LineUpdate) error
	Remove(ctx context.Context, ownerID, productID uint) error
	Clear(ctx context.Context, ownerID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Add inserts the line or merges quantity into the existing one. The unique
// (owner_id, product_id) constraint keeps concurrent adds on a single row.
func (r *repository) Add(ctx context.Context, ownerID, productID uint, quantity int) (*CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Add"),
		zap.Uint("product_id", productID),
		zap.Int("quantity", quantity),
	)

	query := `
	INSERT INTO cart_lines (owner_id, product_id, quantity)
	VALUES ($1, $2, $3)
	ON CONFLICT (owner_id, product_id)
	DO UPDATE SET
		quantity = cart_lines.quantity + EXCLUDED.quantity,
		updated_at = NOW()
	RETURNING id, owner_id, product_id, quantity, created_at, updated_at
	`

	var line CartLine
	err := r.db.QueryRowContext(ctx, query, ownerID, productID, quantity).Scan(
		&line.ID,
		&line.OwnerID,
		&line.ProductID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to add cart line", zap.Error(err))
		return nil, ErrFailedAddCartItem
	}

	log.Info("cart line merged", zap.Int("line_quantity", line.Quantity))
	return &line, nil
}

func (r *repository) List(ctx context.Context, ownerID uint) ([]CartRow, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `
	SELECT c.id, p.id, p.name, p.price, p.status, c.quantity, c.updated_at
	FROM cart_lines c
	JOIN products p ON p.id = c.product_id
	WHERE c.owner_id = $1
	ORDER BY p.name ASC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query cart", zap.Error(err))
		return nil, ErrFailedGetCart
	}
	defer rows.Close()

	var result []CartRow
	for rows.Next() {
		var row CartRow
		if err := rows.Scan(
			&row.LineID,
			&row.ProductID,
			&row.ProductName,
			&row.UnitPrice,
			&row.ProductStatus,
			&row.Quantity,
			&row.UpdatedAt,
		); err != nil {
			log.Error("failed to scan cart row", zap.Error(err))
			return nil, ErrFailedGetCart
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		log.Error("cart rows iteration failed", zap.Error(err))
		return nil, ErrFailedGetCart
	}

	return result, nil
}

// Lines returns the raw cart lines in product name order.
func (r *repository) Lines(ctx context.Context, ownerID uint) ([]CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Lines"),
	)

	query := `
	SELECT c.id, c.owner_id, c.product_id, c.quantity, c.created_at, c.updated_at
	FROM cart_lines c
	JOIN products p ON p.id = c.product_id
	WHERE c.owner_id = $1
	ORDER BY p.name ASC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query cart lines", zap.Error(err))
		return nil, ErrFailedGetCart
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			log.Error("failed to scan cart line", zap.Error(err))
			return nil, ErrFailedGetCart
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedGetCart
	}

	return lines, nil
}

// Update applies every edit in one transaction; a missing line aborts all of them.
func (r *repository) Update(ctx context.Context, ownerID uint, updates []LineUpdate) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Int("update_count", len(updates)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin tx", zap.Error(err))
		return ErrFailedUpdateCart
	}
	defer tx.Rollback()

	for _, u := range updates {
		var res sql.Result
		if u.Delete {
			res, err = tx.ExecContext(ctx,
				`DELETE FROM cart_lines WHERE owner_id = $1 AND product_id = $2`,
				ownerID, u.ProductID,
			)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE cart_lines SET quantity = $1, updated_at = NOW() WHERE owner_id = $2 AND product_id = $3`,
				u.Quantity, ownerID, u.ProductID,
			)
		}
		if err != nil {
			log.Error("failed to apply cart update", zap.Uint("product_id", u.ProductID), zap.Error(err))
			return ErrFailedUpdateCart
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return ErrFailedUpdateCart
		}
		if affected == 0 {
			log.Warn("cart line not found", zap.Uint("product_id", u.ProductID))
			return ErrCartItemNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cart update", zap.Error(err))
		return ErrFailedUpdateCart
	}

	return nil
}

func (r *repository) Remove(ctx context.Context, ownerID, productID uint) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE owner_id = $1 AND product_id = $2`,
		ownerID, productID,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to remove cart line",
			zap.String("layer", "repository"),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return ErrFailedRemoveCart
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ErrFailedRemoveCart
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) Clear(ctx context.Context, ownerID uint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE owner_id = $1`, ownerID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return ErrFailedClearCart
	}
	return nil
}
