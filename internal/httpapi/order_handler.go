package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tradehub-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dbTimeout = 5 * time.Second

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.listPurchases)
	r.Get("/orders/sales", h.listSales)
	r.Get("/orders/{id}", h.get)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Get("/admin/orders", h.adminList)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var input order.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	o, err := h.svc.Create(ctx, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toOrderResponse(o), "Order created successfully")
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	o, err := h.svc.Get(ctx, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toOrderResponse(o), "")
}

type updateStatusRequest struct {
	Status order.OrderStatus `json:"status"`
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	o, err := h.svc.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toOrderResponse(o), "Order status updated")
}

func (h *OrderHandler) listPurchases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	orders, err := h.svc.ListPurchases(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toOrderResponses(orders), "")
}

func (h *OrderHandler) listSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	orders, err := h.svc.ListSales(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toOrderResponses(orders), "")
}

func (h *OrderHandler) adminList(w http.ResponseWriter, r *http.Request) {
	var filter order.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := order.OrderStatus(raw)
		if !status.Valid() {
			writeValidationError(w, "invalid status filter")
			return
		}
		filter.Status = &status
	}

	page := queryInt32(r, "page", 1)
	limit := queryInt32(r, "limit", 20)

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	orders, err := h.svc.List(ctx, &filter, limit, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toOrderResponses(orders), "")
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
