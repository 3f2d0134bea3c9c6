package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if utf8.RuneCountInString(s) > 255 {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewKind validates and creates a Kind.
func NewKind(s string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))

	switch kind {
	case KindObligation, KindTax:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
}

// FulfilledStatus returns the status that marks an occurrence of this kind as done.
func (k Kind) FulfilledStatus() Status {
	if k == KindTax {
		return StatusPaid
	}
	return StatusCompleted
}

// EntityType returns the history label for occurrences of this kind.
func (k Kind) EntityType() EntityType {
	if k == KindTax {
		return EntityTax
	}
	return EntityObligation
}

// NewStatus validates a status for the given kind.
// Obligations use completed as their terminal state; taxes use paid.
// An empty string yields pending.
func NewStatus(kind Kind, s string) (Status, error) {
	if s == "" {
		return StatusPending, nil
	}

	status := Status(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case StatusPending, StatusInProgress, StatusOverdue:
		return status, nil
	case StatusCompleted, StatusPaid:
		if status != kind.FulfilledStatus() {
			return "", fmt.Errorf("%w: %s is not valid for %s", ErrInvalidStatus, s, kind)
		}
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// NewInstallmentStatus validates and creates an InstallmentStatus.
// An empty string yields pending.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	if s == "" {
		return InstallmentPending, nil
	}

	status := InstallmentStatus(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case InstallmentPending, InstallmentPaid, InstallmentOverdue:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// NewRecurrence validates and creates a Recurrence.
// An empty string yields none.
func NewRecurrence(s string) (Recurrence, error) {
	if s == "" {
		return RecurrenceNone, nil
	}

	recurrence := Recurrence(strings.ToLower(strings.TrimSpace(s)))

	switch recurrence {
	case RecurrenceNone, RecurrenceMonthly, RecurrenceQuarterly,
		RecurrenceSemiannual, RecurrenceAnnual:
		return recurrence, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRecurrence, s)
	}
}

// Recurs reports whether the recurrence produces successors.
func (r Recurrence) Recurs() bool {
	return r != "" && r != RecurrenceNone
}

// NewWeekendPolicy validates a weekend policy and folds the legacy vocabularies
// (next_business_day, anticipate) into the three canonical values.
// An empty string yields an empty policy, meaning "use the office default".
func NewWeekendPolicy(s string) (WeekendPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "advance", "anticipate":
		return WeekendAdvance, nil
	case "postpone", "next_business_day":
		return WeekendPostpone, nil
	case "keep", "none":
		return WeekendKeep, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidWeekendPolicy, s)
	}
}

// Or returns p, or def when p is unset.
func (p WeekendPolicy) Or(def WeekendPolicy) WeekendPolicy {
	if p == "" {
		return def
	}
	return p
}

// NewBusinessActivity validates a client's business activity.
// Portuguese labels used by older imports are accepted.
func NewBusinessActivity(s string) (BusinessActivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "commerce", "comercio":
		return ActivityCommerce, nil
	case "service", "servico":
		return ActivityService, nil
	case "both", "comercio_servico":
		return ActivityBoth, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidActivity, s)
	}
}
