package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rezkam/fiscal/internal/application/client"
	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	mw "github.com/rezkam/fiscal/internal/infrastructure/http/middleware"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
	"github.com/rezkam/fiscal/internal/recurring"
)

// Scheduler is the occurrence side of the application layer.
type Scheduler interface {
	RunMonthly(ctx context.Context, eval time.Time) (*scheduling.RunResult, error)
	CreateOccurrence(ctx context.Context, params scheduling.CreateOccurrenceParams) (*scheduling.CreateOccurrenceResult, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Occurrence, error)
	ListClientOccurrences(ctx context.Context, clientID string, month *time.Time) ([]*domain.Occurrence, error)
}

type Installments interface {
	CreateBatch(ctx context.Context, params installment.BatchParams) (*installment.BatchResult, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Installment, error)
	ListInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error)
}

type Clients interface {
	CreateClient(ctx context.Context, params client.CreateClientParams) (*client.CreateClientResult, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateTemplate(ctx context.Context, params client.CreateTemplateParams) (*domain.Template, error)
	ListTemplates(ctx context.Context, taxRegime string) ([]*domain.Template, error)
}

// Handler adapts HTTP requests to application service calls.
type Handler struct {
	scheduler    Scheduler
	installments Installments
	clients      Clients
	adjuster     recurring.Adjuster
	validate     *validator.Validate
	now          func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock sets the clock used when a job request carries no date.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New creates a new HTTP API handler.
func New(scheduler Scheduler, installments Installments, clients Clients, adjuster recurring.Adjuster, opts ...Option) *Handler {
	h := &Handler{
		scheduler:    scheduler,
		installments: installments,
		clients:      clients,
		adjuster:     adjuster,
		validate:     mw.NewValidator(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts every API route on a fresh router.
// Both production code and tests use it so they see identical behavior.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/jobs/recurrences", h.RunRecurrenceJob)

	r.Post("/occurrences", h.CreateOccurrence)
	r.Patch("/occurrences/{id}/status", h.UpdateOccurrenceStatus)

	r.Post("/installments/batch", h.CreateInstallmentBatch)
	r.Get("/installments", h.ListInstallments)
	r.Patch("/installments/{id}/status", h.UpdateInstallmentStatus)

	r.Post("/clients", h.CreateClient)
	r.Get("/clients/{id}", h.GetClient)
	r.Get("/clients/{id}/occurrences", h.ListClientOccurrences)

	r.Post("/templates", h.CreateTemplate)
	r.Get("/templates", h.ListTemplates)

	r.Get("/calendar/adjust", h.AdjustDate)

	return r
}

// decode reads a JSON body into dst and validates it.
// It writes the error response itself and reports whether the caller may continue.
// An empty body is accepted when allowEmpty is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return true
		}
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		details := mw.ValidationDetails(err)
		if len(details) == 0 {
			response.BadRequest(w, "invalid request body")
			return false
		}
		response.ValidationErrors(w, details...)
		return false
	}
	return true
}

// writeError renders service errors, presenting the record behind a duplication conflict.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *dedup.ConflictError
	if errors.As(err, &conflict) {
		response.DuplicateConflict(w, conflict, presentExisting(conflict.Existing))
		return
	}
	response.FromDomainError(w, r, err)
}

// parseDateParam parses a YYYY-MM-DD value, writing a field error on failure.
func parseDateParam(w http.ResponseWriter, field, value string) (time.Time, bool) {
	t, err := domain.ParseDate(value)
	if err != nil {
		response.ValidationError(w, field, "must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return t, true
}
