package cart

import (
	"context"

	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	Add(ctx context.Context, ownerID, productID uint, quantity int) (*CartLine, error)
	Get(ctx context.Context, ownerID uint) (*Cart, error)
	Update(ctx context.Context, ownerID uint, updates []LineUpdate) (*Cart, error)
	Remove(ctx context.Context, ownerID, productID uint) error
	Clear(ctx context.Context, ownerID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
	locker      lock.Locker
}

// NewService creates a new cart service. Every mutation holds the owner lock.
func NewService(repo Repository, productRepo product.Repository, locker lock.Locker) Service {
	return &service{repo: repo, productRepo: productRepo, locker: locker}
}

func (s *service) Add(ctx context.Context, ownerID, productID uint, quantity int) (*CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Add"),
		zap.Uint("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if quantity < 1 {
		log.Warn("invalid quantity")
		return nil, ErrInvalidQuantity
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		log.Warn("product not active", zap.String("status", string(p.Status)))
		return nil, ErrProductNotActive
	}

	unlock, err := s.locker.Lock(ctx, lock.OwnerKey(ownerID))
	if err != nil {
		log.Error("failed to acquire owner lock", zap.Error(err))
		return nil, err
	}
	defer unlock()

	return s.repo.Add(ctx, ownerID, productID, quantity)
}

func (s *service) Get(ctx context.Context, ownerID uint) (*Cart, error) {
	rows, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return MapRowsToCart(ownerID, rows), nil
}

func (s *service) Update(ctx context.Context, ownerID uint, updates []LineUpdate) (*Cart, error) {
	for _, u := range updates {
		if !u.Delete && u.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	if len(updates) > 0 {
		unlock, err := s.locker.Lock(ctx, lock.OwnerKey(ownerID))
		if err != nil {
			return nil, err
		}
		err = s.repo.Update(ctx, ownerID, updates)
		unlock()
		if err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, ownerID)
}

func (s *service) Remove(ctx context.Context, ownerID, productID uint) error {
	unlock, err := s.locker.Lock(ctx, lock.OwnerKey(ownerID))
	if err != nil {
		return err
	}
	defer unlock()

	return s.repo.Remove(ctx, ownerID, productID)
}

func (s *service) Clear(ctx context.Context, ownerID uint) error {
	unlock, err := s.locker.Lock(ctx, lock.OwnerKey(ownerID))
	if err != nil {
		return err
	}
	defer unlock()

	return s.repo.Clear(ctx, ownerID)
}
