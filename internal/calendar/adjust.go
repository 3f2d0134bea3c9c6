package calendar

import (
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Adjust shifts a due date that lands on a non-business day according to policy.
// Business days are returned unchanged regardless of policy. Unknown or empty
// policies behave as postpone.
func (r *Resolver) Adjust(t time.Time, policy domain.WeekendPolicy) time.Time {
	t = domain.Date(t)
	if !r.IsNonBusinessDay(t) {
		return t
	}

	switch policy {
	case domain.WeekendKeep:
		return t
	case domain.WeekendAdvance:
		return r.PreviousBusinessDay(t)
	default:
		return r.NextBusinessDay(t)
	}
}

// Adjustment is the outcome of adjusting a computed due date.
type Adjustment struct {
	DueDate time.Time
	// Original is the computed date when the adjustment moved it, nil otherwise.
	Original *time.Time
}

// Moved reports whether the adjustment changed the date.
func (a Adjustment) Moved() bool {
	return a.Original != nil
}

// Resolve adjusts t and records the pre-adjustment date when it changed,
// which callers store as original_due_date.
func (r *Resolver) Resolve(t time.Time, policy domain.WeekendPolicy) Adjustment {
	computed := domain.Date(t)
	adjusted := r.Adjust(computed, policy)
	if adjusted.Equal(computed) {
		return Adjustment{DueDate: adjusted}
	}
	return Adjustment{DueDate: adjusted, Original: &computed}
}
