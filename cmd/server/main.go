package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/events"
	"storefront-be/internal/fulfillment"
	"storefront-be/internal/handler"
	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// app holds everything main starts and stops.
type app struct {
	router    http.Handler
	limiter   *middleware.RateLimiter
	sweeper   *payment.Sweeper
	consumer  *fulfillment.Consumer
	publisher events.Publisher
	redis     *redis.Client
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, database)
	defer a.close()

	go a.limiter.Cleanup(ctx)
	go a.sweeper.Run(ctx)
	if a.consumer != nil {
		go a.consumer.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newApp(cfg *config.Config, database *sql.DB) *app {
	a := &app{
		limiter:   middleware.NewRateLimiter(cfg.InternalSecretKey),
		publisher: newPublisher(cfg.Kafka),
	}

	var locker lock.Locker
	locker, a.redis = newLocker(cfg.Lock)

	productRepo := product.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	orderRepo := order.NewRepository(database)
	paymentRepo := payment.NewRepository(database)

	cartSvc := cart.NewService(cartRepo, productRepo, locker)
	orderSvc := order.NewService(orderRepo, cartRepo, locker, a.publisher)

	gateway := payment.NewPortoneGateway(cfg.Gateway)
	reconciler := payment.NewReconciler(paymentRepo, gateway, locker, a.publisher)
	paymentSvc := payment.NewService(paymentRepo, reconciler, orderSvc, gateway, locker, cfg.Gateway)

	a.sweeper = payment.NewSweeper(paymentRepo, reconciler, cfg.Reconcile)
	if len(cfg.Kafka.Brokers) > 0 {
		a.consumer = fulfillment.NewConsumer(orderSvc, cfg.Kafka.FulfillmentTopic, cfg.Kafka.FulfillmentGroup, cfg.Kafka.Brokers...)
	}

	a.router = handler.NewRouter(handler.RouterConfig{
		JWTSecret: []byte(cfg.SecretKey),
		Limiter:   a.limiter,
		Cart:      handler.NewCartHandler(cartSvc),
		Order:     handler.NewOrderHandler(orderSvc),
		Payment:   handler.NewPaymentHandler(paymentSvc),
		Webhook:   webhook.NewHandler(paymentRepo, reconciler, cfg.Gateway.WebhookToken),
	})

	return a
}

// newLocker picks Redis when configured so locks hold across instances.
func newLocker(cfg config.Lock) (lock.Locker, *redis.Client) {
	if cfg.RedisAddr == "" {
		logger.L().Info("using in-process locks")
		return lock.NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	logger.L().Info("using redis locks", zap.String("addr", cfg.RedisAddr))
	return lock.NewRedis(client, cfg.TTL), client
}

func newPublisher(cfg config.Kafka) events.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.NewNoop()
	}
	return events.NewKafkaPublisher(cfg.OrderEventsTopic, cfg.Brokers...)
}

func (a *app) close() {
	log := logger.L()
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			log.Warn("failed to close fulfillment consumer", zap.Error(err))
		}
	}
	if err := a.publisher.Close(); err != nil {
		log.Warn("failed to close publisher", zap.Error(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}
}
