package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-be/internal/config"
	"storefront-be/internal/events"
	"storefront-be/internal/lock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg, err := config.Parse()
	if err != nil {
		panic(err)
	}
	cfg.SecretKey = "test-secret"
	return cfg
}

func TestNewApp_Router(t *testing.T) {
	database, _, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	a := newApp(testConfig(), database)
	defer a.close()

	t.Run("Health Check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()

		a.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ok")
	})

	t.Run("Cart needs an owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rr := httptest.NewRecorder()

		a.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Webhook is wired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/portone", strings.NewReader(`not json`))
		rr := httptest.NewRecorder()

		a.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	assert.Nil(t, a.consumer)
	assert.Nil(t, a.redis)
}

func TestNewLocker(t *testing.T) {
	t.Run("Local without redis", func(t *testing.T) {
		locker, client := newLocker(config.Lock{})
		assert.IsType(t, &lock.Local{}, locker)
		assert.Nil(t, client)
	})

	t.Run("Redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)

		locker, client := newLocker(config.Lock{RedisAddr: mr.Addr()})
		require.NotNil(t, client)
		defer client.Close()
		assert.IsType(t, &lock.Redis{}, locker)
	})
}

func TestNewPublisher(t *testing.T) {
	assert.Equal(t, events.NewNoop(), newPublisher(config.Kafka{}))

	p := newPublisher(config.Kafka{Brokers: []string{"localhost:9092"}, OrderEventsTopic: "storefront.orders"})
	assert.IsType(t, &events.KafkaPublisher{}, p)
	assert.NoError(t, p.Close())
}
