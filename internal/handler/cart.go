package handler

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	svc cart.Service
}

func NewCartHandler(svc cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

type updateCartRequest struct {
	Lines []cart.LineUpdate `json:"lines"`
}

// Add handles POST /cart/add/{productId}?quantity=N. Quantity defaults to 1.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	productID, err := utils.ToUint(chi.URLParam(r, "productId"))
	if err != nil || productID == 0 {
		utils.WriteJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	quantity, err := utils.ToPositiveInt(r.URL.Query().Get("quantity"), 1)
	if err != nil {
		utils.WriteJSONError(w, cart.ErrInvalidQuantity.Error(), http.StatusBadRequest)
		return
	}

	line, err := h.svc.Add(r.Context(), ownerID, productID, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, line)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	c, err := h.svc.Get(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, c)
}

// Update handles POST /cart with a batch of quantity edits and deletions.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), ownerID, req.Lines)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	productID, err := utils.ToUint(chi.URLParam(r, "productId"))
	if err != nil || productID == 0 {
		utils.WriteJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Remove(r.Context(), ownerID, productID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := utils.GetOwnerIDFromContext(r.Context())

	if err := h.svc.Clear(r.Context(), ownerID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
