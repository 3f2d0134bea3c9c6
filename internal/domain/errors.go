package domain

import "errors"

// Domain errors returned by services and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrOccurrenceNotFound indicates the occurrence does not exist.
	ErrOccurrenceNotFound = errors.New("occurrence not found")

	// ErrInstallmentNotFound indicates the installment does not exist.
	ErrInstallmentNotFound = errors.New("installment not found")

	// ErrClientNotFound indicates the client does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")
)

// Validation errors.
var (
	ErrTitleRequired           = errors.New("title is required")
	ErrTitleTooLong            = errors.New("title must be 255 characters or less")
	ErrClientRequired          = errors.New("client is required")
	ErrNameRequired            = errors.New("name is required")
	ErrInvalidKind             = errors.New("invalid kind")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidRecurrence       = errors.New("invalid recurrence")
	ErrInvalidWeekendPolicy    = errors.New("invalid weekend policy")
	ErrInvalidActivity         = errors.New("invalid business activity")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidDayOfMonth       = errors.New("day of month must be between 1 and 31")
	ErrInvalidAmount           = errors.New("amount must not be negative")
	ErrInvalidInstallmentCount = errors.New("installment count must be at least 1")
	ErrConfirmationRequired    = errors.New("confirmation required")
)

// Conflict errors.
var (
	// ErrDuplicateOccurrence is returned when an occurrence for the same client, title,
	// kind and month already exists. Storage unique-key violations map to it as well.
	ErrDuplicateOccurrence = errors.New("duplicate occurrence")

	// ErrDuplicateInstallment is returned when an installment already exists for the client.
	ErrDuplicateInstallment = errors.New("duplicate installment")

	// ErrDuplicateClient is returned when a client with the same CNPJ already exists.
	ErrDuplicateClient = errors.New("duplicate client")

	// ErrJobLocked indicates another run of the monthly job holds the lock.
	ErrJobLocked = errors.New("recurrence job already running")

	// ErrHistoryWrite wraps failures to append a recurrence history entry.
	ErrHistoryWrite = errors.New("failed to write recurrence history")
)
