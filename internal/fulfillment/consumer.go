// Package fulfillment consumes shipping updates from the warehouse and moves
// paid orders through their post-payment states.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StatusUpdate is one message on the fulfillment topic.
type StatusUpdate struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Advancer is the order operation the consumer drives.
type Advancer interface {
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to order.Status) error
}

type Consumer struct {
	orders Advancer
	reader messageReader
}

func NewConsumer(orders Advancer, topic, groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6,
	})
	return &Consumer{orders: orders, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) processMessage(ctx context.Context) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "fulfillment"))

	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		log.Error("error reading message", zap.Error(err))
		return
	}

	if err := c.handle(ctx, m.Value); err != nil {
		log.Warn("fulfillment update skipped",
			zap.ByteString("key", m.Key),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
	}
}

var errNotFulfillmentStatus = errors.New("status is not a fulfillment status")

// handle applies one update. Payment states are owned by reconciliation and
// are refused here.
func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var update StatusUpdate
	if err := json.Unmarshal(value, &update); err != nil {
		return err
	}

	orderID, err := uuid.Parse(update.OrderID)
	if err != nil {
		return err
	}

	to := order.Status(update.Status)
	switch to {
	case order.StatusPreparedProduct, order.StatusShipped, order.StatusDelivered, order.StatusCanceled:
	default:
		return errNotFulfillmentStatus
	}

	if err := c.orders.AdvanceStatus(ctx, orderID, to); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order advanced by fulfillment",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(to)),
	)
	return nil
}
