package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/orders"
)

type OrdersHandler struct {
	Orders *orders.Service
}

type createOrderReq struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID int64  `json:"variant_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required"`
	Contact   string `json:"contact" validate:"required"`
	Method    string `json:"method" validate:"required"`
	Total     int64  `json:"total" validate:"gte=0"`
}

type createOrderResp struct {
	ID          int64  `json:"id"`
	FormattedID string `json:"formattedId"`
	Idempotent  bool   `json:"idempotent"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders", h.createOrder)
	r.Get("/api/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/orders", h.listOrders)
	r.Post("/api/admin/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	id, replayed, err := h.Orders.PlaceOrderOnce(r.Context(), key, domain.NewOrder{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Name:      req.Name,
		Contact:   req.Contact,
		Method:    req.Method,
		Total:     req.Total,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	code := http.StatusCreated
	if replayed {
		code = http.StatusOK
	}
	writeJSON(w, code, createOrderResp{ID: id, FormattedID: domain.FormatOrderID(id), Idempotent: replayed})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.ListOrders(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req statusReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.Orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
