package payment

import (
	"context"
	"fmt"

	"storefront-be/internal/config"
	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// StartPayment opens a new attempt for a payable order and returns the
	// parameters the client widget needs.
	StartPayment(ctx context.Context, ownerID uint, orderID uuid.UUID, buyer Buyer) (*PayParams, error)
	// Check reconciles one attempt of the owner's order against the gateway.
	Check(ctx context.Context, ownerID uint, orderID, paymentID uuid.UUID) (*Payment, error)
}

// OrderReader resolves an order for its owner, including payability.
type OrderReader interface {
	Get(ctx context.Context, ownerID uint, orderID uuid.UUID) (*order.Order, error)
}

type service struct {
	repo       Repository
	reconciler Reconciler
	orders     OrderReader
	gateway    Gateway
	locker     lock.Locker
	cfg        config.Gateway
}

func NewService(
	repo Repository,
	reconciler Reconciler,
	orders OrderReader,
	gateway Gateway,
	locker lock.Locker,
	cfg config.Gateway,
) Service {
	return &service{
		repo:       repo,
		reconciler: reconciler,
		orders:     orders,
		gateway:    gateway,
		locker:     locker,
		cfg:        cfg,
	}
}

func (s *service) StartPayment(ctx context.Context, ownerID uint, orderID uuid.UUID, buyer Buyer) (*PayParams, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "StartPayment"),
		zap.String("order_id", orderID.String()),
	)

	// Payability check and insert happen under one lock.
	unlock, err := s.locker.Lock(ctx, lock.OrderKey(orderID.String()))
	if err != nil {
		log.Error("failed to acquire order lock", zap.Error(err))
		return nil, err
	}
	defer unlock()

	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanPay {
		log.Warn("order not payable", zap.String("status", string(o.Status)))
		return nil, order.ErrOrderNotPayable
	}

	p := &Payment{
		ID:            uuid.New(),
		OrderID:       o.ID,
		Name:          o.Name,
		DesiredAmount: o.TotalAmount,
		BuyerName:     buyer.Name,
		BuyerEmail:    buyer.Email,
		PayMethod:     DefaultPayMethod,
		PayStatus:     StatusReady,
	}

	if s.cfg.Prepare {
		if err := s.gateway.Prepare(ctx, p.MerchantUID(), p.DesiredAmount); err != nil {
			log.Error("gateway prepare failed", zap.Error(err))
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return &PayParams{
		ShopID:      s.cfg.ShopID,
		MerchantUID: p.MerchantUID(),
		Name:        p.Name,
		Amount:      p.DesiredAmount,
		BuyerName:   p.BuyerName,
		BuyerEmail:  p.BuyerEmail,
		PayMethod:   p.PayMethod,
		NextURL:     fmt.Sprintf("/orders/%s/pay/%s/check", o.ID, p.ID),
	}, nil
}

func (s *service) Check(ctx context.Context, ownerID uint, orderID, paymentID uuid.UUID) (*Payment, error) {
	if _, err := s.orders.Get(ctx, ownerID, orderID); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.OrderID != orderID {
		return nil, ErrPaymentNotFound
	}

	return s.reconciler.Reconcile(ctx, p)
}
