package handler

import (
	"net/http"

	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
	"github.com/rezkam/fiscal/internal/recurring"
)

// AdjustDate previews where a due date lands under a weekend policy.
// GET /v1/calendar/adjust?date=YYYY-MM-DD&policy=postpone&recurrence=monthly
func (h *Handler) AdjustDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, ok := parseDateParam(w, "date", q.Get("date"))
	if !ok {
		return
	}

	policy := domain.WeekendPostpone
	if p := q.Get("policy"); p != "" {
		parsed, err := domain.NewWeekendPolicy(p)
		if err != nil {
			response.ValidationError(w, "policy", "must be one of: advance postpone keep")
			return
		}
		policy = parsed
	}

	rec := domain.RecurrenceMonthly
	if v := q.Get("recurrence"); v != "" {
		parsed, err := domain.NewRecurrence(v)
		if err != nil {
			response.ValidationError(w, "recurrence", "must be one of: none monthly quarterly semiannual annual")
			return
		}
		rec = parsed
	}

	adj := h.adjuster.Resolve(date, policy)
	response.OK(w, AdjustmentResponse{
		Date:      domain.FormatDate(date),
		Policy:    string(policy),
		DueDate:   domain.FormatDate(adj.DueDate),
		Moved:     adj.Moved(),
		Reference: recurring.ReferenceLabel(adj.DueDate, rec),
	})
}
