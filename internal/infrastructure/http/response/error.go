package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`

	// Level and Existing describe the record a duplication check matched.
	Level    string `json:"level,omitempty"`
	Existing any    `json:"existing,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationErrors sends a 400 validation error with field details.
func ValidationErrors(w http.ResponseWriter, fields ...ErrorField) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: fields,
		},
	})
}

// ValidationError sends a 400 validation error for one field.
func ValidationError(w http.ResponseWriter, field, issue string) {
	ValidationErrors(w, ErrorField{Field: field, Issue: issue})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// Locked sends a 423 Locked error.
func Locked(w http.ResponseWriter, message string) {
	Error(w, "LOCKED", message, http.StatusLocked)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client gets a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	JSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// DuplicateConflict sends a 409 carrying existing, the presentation of the
// record a duplication tier matched. Code is DUPLICATE for blocking tiers and
// CONFIRMATION_REQUIRED otherwise.
func DuplicateConflict(w http.ResponseWriter, conflict *dedup.ConflictError, existing any) {
	code := "DUPLICATE"
	if errors.Is(conflict, domain.ErrConfirmationRequired) {
		code = "CONFIRMATION_REQUIRED"
	}
	JSON(w, http.StatusConflict, ErrorResponse{
		Error: ErrorDetail{
			Code:     code,
			Message:  conflict.Message,
			Level:    string(conflict.Level),
			Existing: existing,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *dedup.ConflictError
	if errors.As(err, &conflict) {
		DuplicateConflict(w, conflict, conflict.Existing)
		return
	}

	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrTitleRequired):
		ValidationError(w, "title", "required field missing")
	case errors.Is(err, domain.ErrTitleTooLong):
		ValidationError(w, "title", "must be 255 characters or less")
	case errors.Is(err, domain.ErrNameRequired):
		ValidationError(w, "name", "required field missing")
	case errors.Is(err, domain.ErrClientRequired):
		ValidationError(w, "client_id", "required field missing")
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")
	case errors.Is(err, domain.ErrInvalidKind):
		ValidationError(w, "type", "must be obligation or tax")
	case errors.Is(err, domain.ErrInvalidStatus):
		ValidationError(w, "status", "invalid status")
	case errors.Is(err, domain.ErrInvalidRecurrence):
		ValidationError(w, "recurrence", "invalid recurrence")
	case errors.Is(err, domain.ErrInvalidWeekendPolicy):
		ValidationError(w, "weekend_policy", "must be advance, postpone or keep")
	case errors.Is(err, domain.ErrInvalidActivity):
		ValidationError(w, "business_activity", "must be commerce, service or both")
	case errors.Is(err, domain.ErrInvalidDate):
		ValidationError(w, "date", "must be YYYY-MM-DD")
	case errors.Is(err, domain.ErrInvalidDayOfMonth):
		ValidationError(w, "day_of_month", "must be between 1 and 31")
	case errors.Is(err, domain.ErrInvalidAmount):
		ValidationError(w, "amount", "must not be negative")
	case errors.Is(err, domain.ErrInvalidInstallmentCount):
		ValidationError(w, "total", "must be at least 1")
	case errors.Is(err, domain.ErrConfirmationRequired):
		Error(w, "CONFIRMATION_REQUIRED", err.Error(), http.StatusConflict)

	// Not found errors (404)
	case errors.Is(err, domain.ErrOccurrenceNotFound):
		NotFound(w, "occurrence")
	case errors.Is(err, domain.ErrInstallmentNotFound):
		NotFound(w, "installment")
	case errors.Is(err, domain.ErrClientNotFound):
		NotFound(w, "client")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Conflicts (409)
	case errors.Is(err, domain.ErrDuplicateOccurrence),
		errors.Is(err, domain.ErrDuplicateInstallment),
		errors.Is(err, domain.ErrDuplicateClient):
		Conflict(w, err.Error())

	// Concurrent job run (423)
	case errors.Is(err, domain.ErrJobLocked):
		Locked(w, "recurrence job already running")

	// Unknown errors (500) - Log server-side, return generic message to client
	default:
		InternalError(w, r, err)
	}
}

// JobFailure is the body of a failed job trigger.
type JobFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JobError reports a failed job run as a flat {"success":false,"error":"..."}
// body, which the scheduler reads without the API's error envelope. A held lock
// is 423; anything else is 500 with the cause logged and a generic message sent.
func JobError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrJobLocked) {
		JSON(w, http.StatusLocked, JobFailure{Error: "monthly job already running"})
		return
	}
	slog.ErrorContext(r.Context(), "Monthly job failed", "error", err)
	JSON(w, http.StatusInternalServerError, JobFailure{Error: "monthly job failed"})
}
