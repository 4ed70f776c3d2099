package handler

import (
	"net/http"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const defaultRequestTimeout = 30 * time.Second

type RouterConfig struct {
	JWTSecret      []byte
	Limiter        *middleware.RateLimiter
	RequestTimeout time.Duration

	Cart    *CartHandler
	Order   *OrderHandler
	Payment *PaymentHandler
	Webhook http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.Auth(cfg.JWTSecret))
	r.Use(logger.LoggingMiddleware)
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}
	r.Use(chimw.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Webhook != nil {
		r.Method(http.MethodPost, "/webhooks/portone", cfg.Webhook)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.Get)
			r.Post("/", cfg.Cart.Update)
			r.Delete("/", cfg.Cart.Clear)
			r.Post("/add/{productId}", cfg.Cart.Add)
			r.Delete("/{productId}", cfg.Cart.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.Order.Checkout)
			r.Get("/", cfg.Order.List)
			r.Get("/{id}", cfg.Order.Get)
			r.Post("/{id}/pay", cfg.Payment.Pay)
			r.Get("/{id}/pay/{paymentId}/check", cfg.Payment.Check)
		})
	})

	return r
}
