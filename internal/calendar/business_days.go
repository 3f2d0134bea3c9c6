package calendar

import (
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// maxWalkDays bounds the walk to the nearest business day.
// A table that marks a whole year as holidays stops the walk instead of looping forever.
const maxWalkDays = 366

// HolidayChecker reports whether a date is a holiday.
type HolidayChecker interface {
	IsHoliday(t time.Time) bool
}

// Resolver answers business-day questions on top of a holiday table.
type Resolver struct {
	holidays HolidayChecker
}

// NewResolver creates a Resolver. A nil checker treats only weekends as non-business days.
func NewResolver(holidays HolidayChecker) *Resolver {
	return &Resolver{holidays: holidays}
}

// IsNonBusinessDay reports whether t is a Saturday, a Sunday or a holiday.
func (r *Resolver) IsNonBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return r.holidays != nil && r.holidays.IsHoliday(t)
}

// NextBusinessDay returns the first business day on or after t.
// If t is already a business day it is returned unchanged (as a date).
func (r *Resolver) NextBusinessDay(t time.Time) time.Time {
	return r.walk(domain.Date(t), 1)
}

// PreviousBusinessDay returns the last business day on or before t.
func (r *Resolver) PreviousBusinessDay(t time.Time) time.Time {
	return r.walk(domain.Date(t), -1)
}

// walk steps one day at a time so clusters such as a weekend followed by a
// holiday are crossed without assuming a fixed jump. Returns start when no
// business day exists within maxWalkDays.
func (r *Resolver) walk(start time.Time, step int) time.Time {
	cur := start
	for range maxWalkDays {
		if !r.IsNonBusinessDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, step)
	}
	return start
}
