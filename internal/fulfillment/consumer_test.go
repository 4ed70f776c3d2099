package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-be/internal/order"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdvancer struct {
	mock.Mock
}

func (m *MockAdvancer) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to order.Status) error {
	return m.Called(ctx, orderID, to).Error(0)
}

// fakeReader replays msgs, then blocks until ctx is cancelled.
type fakeReader struct {
	msgs   []kafka.Message
	errs   []error
	closed bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return kafka.Message{}, err
	}
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		return m, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestConsumer_Handle(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Advances the order", func(t *testing.T) {
		orders := new(MockAdvancer)
		c := &Consumer{orders: orders}

		orders.On("AdvanceStatus", ctx, id, order.StatusShipped).Return(nil)

		err := c.handle(ctx, []byte(`{"order_id":"`+id.String()+`","status":"shipped"}`))
		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("Refuses payment states", func(t *testing.T) {
		orders := new(MockAdvancer)
		c := &Consumer{orders: orders}

		err := c.handle(ctx, []byte(`{"order_id":"`+id.String()+`","status":"paid"}`))
		assert.ErrorIs(t, err, errNotFulfillmentStatus)
		orders.AssertNotCalled(t, "AdvanceStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Illegal transition surfaces", func(t *testing.T) {
		orders := new(MockAdvancer)
		c := &Consumer{orders: orders}

		orders.On("AdvanceStatus", ctx, id, order.StatusDelivered).Return(order.ErrInvalidTransition)

		err := c.handle(ctx, []byte(`{"order_id":"`+id.String()+`","status":"delivered"}`))
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("Malformed payloads", func(t *testing.T) {
		c := &Consumer{orders: new(MockAdvancer)}

		assert.Error(t, c.handle(ctx, []byte(`not json`)))
		assert.Error(t, c.handle(ctx, []byte(`{"order_id":"42","status":"shipped"}`)))
	})
}

func TestConsumer_Run(t *testing.T) {
	id := uuid.New()
	orders := new(MockAdvancer)
	reader := &fakeReader{
		errs: []error{errors.New("broker rebalancing")},
		msgs: []kafka.Message{
			{Value: []byte(`{"order_id":"` + id.String() + `","status":"prepared_product"}`)},
			{Value: []byte(`{"order_id":"` + id.String() + `","status":"refunded"}`)},
			{Value: []byte(`{"order_id":"` + id.String() + `","status":"shipped"}`)},
		},
	}
	c := &Consumer{orders: orders, reader: reader}

	processed := make(chan order.Status, 2)
	orders.On("AdvanceStatus", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) { processed <- args.Get(2).(order.Status) }).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	for _, want := range []order.Status{order.StatusPreparedProduct, order.StatusShipped} {
		select {
		case got := <-processed:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
