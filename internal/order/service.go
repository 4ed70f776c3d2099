package order

import (
	"context"

	"storefront-be/internal/cart"
	"storefront-be/internal/events"
	"storefront-be/internal/lock"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Checkout(ctx context.Context, ownerID uint) (*Order, error)
	CreateFromCart(ctx context.Context, ownerID uint, lines []cart.CartLine) (*Order, error)
	Get(ctx context.Context, ownerID uint, orderID uuid.UUID) (*Order, error)
	List(ctx context.Context, ownerID uint) ([]Order, error)
	CanPay(ctx context.Context, o *Order) (bool, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to Status) error
}

// CartReader is the part of the cart store checkout needs.
type CartReader interface {
	Lines(ctx context.Context, ownerID uint) ([]cart.CartLine, error)
}

type service struct {
	repo      Repository
	cartRepo  CartReader
	locker    lock.Locker
	publisher events.Publisher
}

func NewService(repo Repository, cartRepo CartReader, locker lock.Locker, publisher events.Publisher) Service {
	return &service{
		repo:      repo,
		cartRepo:  cartRepo,
		locker:    locker,
		publisher: publisher,
	}
}

// Checkout converts the owner's whole cart into an order. The owner lock keeps
// two concurrent checkouts from converting the same cart.
func (s *service) Checkout(ctx context.Context, ownerID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	unlock, err := s.locker.Lock(ctx, lock.OwnerKey(ownerID))
	if err != nil {
		log.Error("failed to acquire owner lock", zap.Error(err))
		return nil, err
	}
	defer unlock()

	lines, err := s.cartRepo.Lines(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.CreateFromCart(ctx, ownerID, lines)
}

func (s *service) CreateFromCart(ctx context.Context, ownerID uint, lines []cart.CartLine) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFromCart"),
		zap.Int("line_count", len(lines)),
	)

	if len(lines) == 0 {
		log.Warn("checkout with empty cart")
		return nil, ErrEmptyCart
	}

	o, err := s.repo.CreateFromCart(ctx, ownerID, lines)
	if err != nil {
		return nil, err
	}
	o.CanPay = CanPay(o.Status, false)

	if err := s.publisher.Publish(ctx, events.OrderEvent{
		Type:    events.OrderCreated,
		OrderID: o.ID.String(),
		OwnerID: o.OwnerID,
		Amount:  o.TotalAmount,
		Status:  string(o.Status),
	}); err != nil {
		log.Warn("order created event not published", zap.Error(err))
	}

	return o, nil
}

// Get returns the owner's order with its payments. Other owners' orders are
// reported as not found.
func (s *service) Get(ctx context.Context, ownerID uint, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		logger.FromCtx(ctx).Warn("order requested by another owner",
			zap.String("layer", "service"),
			zap.String("order_id", orderID.String()),
		)
		return nil, ErrOrderNotFound
	}

	payments, err := s.repo.ListPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Payments = payments

	hasPaid := false
	for _, p := range payments {
		if p.IsPaidOK {
			hasPaid = true
			break
		}
	}
	o.CanPay = CanPay(o.Status, hasPaid)

	return o, nil
}

func (s *service) List(ctx context.Context, ownerID uint) ([]Order, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) CanPay(ctx context.Context, o *Order) (bool, error) {
	if !IsPayable(o.Status) {
		return false, nil
	}

	hasPaid, err := s.repo.HasPaidPayment(ctx, o.ID)
	if err != nil {
		return false, err
	}

	return CanPay(o.Status, hasPaid), nil
}

// AdvanceStatus applies an externally driven transition such as fulfillment.
func (s *service) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdvanceStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("to", string(to)),
	)

	if !to.Valid() {
		return ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status.IsTerminal() {
		log.Warn("order already closed", zap.String("from", string(o.Status)))
		return ErrInvalidTransition
	}
	if !CanTransition(o.Status, to) {
		log.Warn("illegal transition", zap.String("from", string(o.Status)))
		return ErrInvalidTransition
	}

	if err := s.repo.AdvanceStatus(ctx, orderID, o.Status, to); err != nil {
		return err
	}

	log.Info("order status advanced", zap.String("from", string(o.Status)))
	return nil
}
