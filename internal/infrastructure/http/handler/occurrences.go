package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// RunRecurrenceJob runs the monthly recurrence job for the requested date, or today.
// POST /v1/jobs/recurrences
func (h *Handler) RunRecurrenceJob(w http.ResponseWriter, r *http.Request) {
	var req RunJobRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	eval := h.now()
	if req.Date != "" {
		d, ok := parseDateParam(w, "date", req.Date)
		if !ok {
			return
		}
		eval = d
	}

	result, err := h.scheduler.RunMonthly(r.Context(), eval)
	if err != nil {
		response.JobError(w, r, err)
		return
	}

	response.OK(w, toRunJobResponse(result))
}

// CreateOccurrence registers an obligation or tax entered by a user.
// POST /v1/occurrences
func (h *Handler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	var req CreateOccurrenceRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	due, ok := parseDateParam(w, "due_date", req.DueDate)
	if !ok {
		return
	}

	result, err := h.scheduler.CreateOccurrence(r.Context(), scheduling.CreateOccurrenceParams{
		ClientID:      req.ClientID,
		Kind:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Notes:         req.Notes,
		Responsible:   req.Responsible,
		Amount:        req.Amount,
		DueDate:       due,
		Status:        req.Status,
		Recurrence:    req.Recurrence,
		WeekendPolicy: req.WeekendPolicy,
		Confirm:       req.Confirm,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, CreateOccurrenceResponse{
		Occurrence: toOccurrenceResponse(result.Occurrence),
		Warning:    toOccurrenceWarning(result.Warning),
	})
}

// UpdateOccurrenceStatus moves an occurrence to a new status.
// PATCH /v1/occurrences/{id}/status
func (h *Handler) UpdateOccurrenceStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	occ, err := h.scheduler.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, toOccurrenceResponse(occ))
}

// ListClientOccurrences lists a client's occurrences, optionally for one month.
// GET /v1/clients/{id}/occurrences?month=YYYY-MM
func (h *Handler) ListClientOccurrences(w http.ResponseWriter, r *http.Request) {
	var month *time.Time
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			response.ValidationError(w, "month", "must be a month in YYYY-MM format")
			return
		}
		month = &t
	}

	occurrences, err := h.scheduler.ListClientOccurrences(r.Context(), chi.URLParam(r, "id"), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"occurrences": toOccurrenceResponses(occurrences)})
}

