package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/lock"
	"storefront-be/internal/logger"
	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	Provider    = "portone"
	TokenHeader = "X-Webhook-Token"

	maxBodyBytes = 64 << 10
)

// Payload is the notification PortOne posts on a payment status change.
type Payload struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Status      string `json:"status"`
}

// Store is the part of the payment repository the webhook needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	SaveWebhook(ctx context.Context, event payment.WebhookEvent) (int64, bool, error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

// Handler treats the notification as a hint only: the status in the body is
// never trusted, the payment is reconciled against the gateway instead.
type Handler struct {
	store      Store
	reconciler payment.Reconciler
	token      string
}

func NewHandler(store Store, reconciler payment.Reconciler, token string) *Handler {
	return &Handler{
		store:      store,
		reconciler: reconciler,
		token:      token,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", Provider),
	)

	if !h.verify(r) {
		log.Warn("webhook token mismatch")
		utils.WriteJSONError(w, "invalid webhook token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil || payload.MerchantUID == "" || payload.ImpUID == "" {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("imp_uid", payload.ImpUID),
		zap.String("merchant_uid", payload.MerchantUID),
		zap.String("status", payload.Status),
	)

	webhookID, duplicate, err := h.store.SaveWebhook(ctx, payment.WebhookEvent{
		Provider:       Provider,
		EventID:        eventID(payload),
		EventType:      payload.Status,
		ExternalID:     payload.MerchantUID,
		Payload:        body,
		SignatureValid: h.token != "",
	})
	if err != nil {
		utils.WriteJSONError(w, "failed to store webhook", http.StatusInternalServerError)
		return
	}
	if duplicate {
		log.Info("duplicate webhook ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	if err := h.process(ctx, payload); err != nil {
		log.Warn("webhook processing failed", zap.Error(err))
		if markErr := h.store.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		if retryable(err) {
			w.Header().Set("Retry-After", "5")
			utils.WriteJSONError(w, "webhook processing failed", http.StatusServiceUnavailable)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "failed"})
		return
	}

	if err := h.store.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}

	log.Info("webhook processed")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// eventID keys a delivery for dedupe. The same notification redelivered maps
// to the same row.
func eventID(p Payload) string {
	return p.MerchantUID + ":" + p.ImpUID + ":" + p.Status
}

// retryable reports failures a redelivery can fix. The gateway retries on 5xx.
func retryable(err error) bool {
	return errors.Is(err, payment.ErrGatewayUnreachable) ||
		errors.Is(err, payment.ErrConcurrentUpdate) ||
		errors.Is(err, payment.ErrFailedGetPayment) ||
		errors.Is(err, payment.ErrFailedSavePayment) ||
		errors.Is(err, lock.ErrLockTimeout)
}

func (h *Handler) verify(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	got := r.Header.Get(TokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func (h *Handler) process(ctx context.Context, payload Payload) error {
	id, err := uuid.Parse(payload.MerchantUID)
	if err != nil {
		return payment.ErrPaymentNotFound
	}

	p, err := h.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = h.reconciler.Reconcile(ctx, p)
	return err
}
