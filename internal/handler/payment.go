package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type payRequest struct {
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

// Pay opens a payment attempt. Buyer fields default to the token claims.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, _ := utils.GetOwnerIDFromContext(ctx)

	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	buyer := payment.Buyer{Name: req.BuyerName, Email: req.BuyerEmail}
	if buyer.Name == "" {
		buyer.Name = utils.GetOwnerNameFromContext(ctx)
	}
	if buyer.Email == "" {
		buyer.Email = utils.GetOwnerEmailFromContext(ctx)
	}

	params, err := h.svc.StartPayment(ctx, ownerID, orderID, buyer)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, params)
}

// Check is the buyer's return URL: reconcile, then show the order.
func (h *PaymentHandler) Check(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(chi.URLParam(r, "paymentId"))
	if err != nil {
		utils.WriteJSONError(w, payment.ErrPaymentNotFound.Error(), http.StatusNotFound)
		return
	}

	if _, err := h.svc.Check(r.Context(), ownerID, orderID, paymentID); err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/orders/"+orderID.String(), http.StatusSeeOther)
}
