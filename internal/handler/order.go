package handler

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Checkout converts the caller's cart into an order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	o, err := h.svc.Checkout(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	orders, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Get(r.Context(), ownerID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

// orderIDParam reports a malformed id the same way as an unknown one.
func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSONError(w, order.ErrOrderNotFound.Error(), http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}
