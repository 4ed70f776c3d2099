package handler

import (
	"context"

	"storefront-be/internal/cart"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Add(ctx context.Context, ownerID, productID uint, quantity int) (*cart.CartLine, error) {
	args := m.Called(ctx, ownerID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartLine), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, ownerID uint) (*cart.Cart, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Update(ctx context.Context, ownerID uint, updates []cart.LineUpdate) (*cart.Cart, error) {
	args := m.Called(ctx, ownerID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, ownerID, productID uint) error {
	return m.Called(ctx, ownerID, productID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, ownerID uint) error {
	return m.Called(ctx, ownerID).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, ownerID uint) (*order.Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CreateFromCart(ctx context.Context, ownerID uint, lines []cart.CartLine) (*order.Order, error) {
	args := m.Called(ctx, ownerID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, ownerID uint, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, ownerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, ownerID uint) ([]order.Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) CanPay(ctx context.Context, o *order.Order) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to order.Status) error {
	return m.Called(ctx, orderID, to).Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) StartPayment(ctx context.Context, ownerID uint, orderID uuid.UUID, buyer payment.Buyer) (*payment.PayParams, error) {
	args := m.Called(ctx, ownerID, orderID, buyer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PayParams), args.Error(1)
}

func (m *MockPaymentService) Check(ctx context.Context, ownerID uint, orderID, paymentID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, ownerID, orderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}
