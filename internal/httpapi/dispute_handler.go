package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"tradehub-be/internal/dispute"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DisputeHandler struct {
	svc dispute.Service
}

func NewDisputeHandler(svc dispute.Service) *DisputeHandler {
	return &DisputeHandler{svc: svc}
}

func (h *DisputeHandler) Register(r chi.Router) {
	r.Post("/disputes", h.open)
	r.Get("/disputes", h.list)
	r.Get("/disputes/{id}", h.get)
	r.Post("/disputes/{id}/messages", h.addMessage)
	r.Get("/disputes/{id}/messages", h.listMessages)
	r.Patch("/disputes/{id}/resolve", h.resolve)
	r.Get("/admin/disputes", h.adminList)
}

type openDisputeRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

func (h *DisputeHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if req.OrderID == uuid.Nil {
		writeValidationError(w, "order_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	d, err := h.svc.Open(ctx, req.OrderID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toDisputeResponse(d), "Dispute opened")
}

func (h *DisputeHandler) get(w http.ResponseWriter, r *http.Request) {
	disputeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid dispute id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	d, err := h.svc.Get(ctx, disputeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toDisputeResponse(d), "")
}

type addMessageRequest struct {
	Content string `json:"content"`
}

func (h *DisputeHandler) addMessage(w http.ResponseWriter, r *http.Request) {
	disputeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid dispute id")
		return
	}

	var req addMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	m, err := h.svc.AddMessage(ctx, disputeID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toMessageResponse(m), "Message added")
}

func (h *DisputeHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	disputeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid dispute id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	messages, err := h.svc.Messages(ctx, disputeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	writeSuccess(w, http.StatusOK, out, "")
}

type resolveRequest struct {
	Status     dispute.DisputeStatus `json:"status"`
	Resolution string                `json:"resolution"`
}

func (h *DisputeHandler) resolve(w http.ResponseWriter, r *http.Request) {
	disputeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid dispute id")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	d, err := h.svc.Resolve(ctx, disputeID, req.Status, req.Resolution)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toDisputeResponse(d), "Dispute resolved")
}

func (h *DisputeHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	disputes, err := h.svc.ListMine(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toDisputeResponses(disputes), "")
}

func (h *DisputeHandler) adminList(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	limit := queryInt32(r, "limit", 20)

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	disputes, err := h.svc.List(ctx, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toDisputeResponses(disputes), "")
}
