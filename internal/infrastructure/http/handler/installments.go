package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// CreateInstallmentBatch creates a payment plan in chunks.
// A partial run still answers 201 with the counts and a non-committal message.
// POST /v1/installments/batch
func (h *Handler) CreateInstallmentBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	anchor, ok := parseDateParam(w, "anchor_date", req.AnchorDate)
	if !ok {
		return
	}

	result, err := h.installments.CreateBatch(r.Context(), installment.BatchParams{
		ClientID:      req.ClientID,
		ObligationID:  req.ObligationID,
		Total:         req.Total,
		AnchorDate:    anchor,
		Amount:        req.Amount,
		Protocol:      req.Protocol,
		WeekendPolicy: req.WeekendPolicy,
		Confirmed:     req.Confirmed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, toBatchResponse(result))
}

// UpdateInstallmentStatus marks an installment pending, paid or overdue.
// PATCH /v1/installments/{id}/status
func (h *Handler) UpdateInstallmentStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	inst, err := h.installments.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, toInstallmentResponse(inst))
}

// ListInstallments lists installments by client and, optionally, obligation.
// GET /v1/installments?client_id=&obligation_id=
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.InstallmentFilter{
		ClientID:     q.Get("client_id"),
		ObligationID: q.Get("obligation_id"),
	}

	installments, err := h.installments.ListInstallments(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"installments": toInstallmentResponses(installments)})
}
