package recurring

import (
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// DefaultTemplateDay is the day of month used by template items that do not set one.
const DefaultTemplateDay = 10

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate returns day in the given month, clamped to the month's last day.
func ClampedDate(year int, month time.Month, day int) time.Time {
	day = max(day, 1)
	return domain.NewDate(year, month, min(day, DaysInMonth(year, month)))
}

// NextDueDate places the anchor's day of month into eval's month.
// Day 31 in a 30-day month yields the 30th; in February the 28th or 29th.
// The result is not adjusted for business days.
func NextDueDate(anchor, eval time.Time) time.Time {
	return ClampedDate(eval.Year(), eval.Month(), anchor.Day())
}

// AddMonths moves anchor forward by n calendar months keeping its day of month,
// clamped to the target month's length. Unlike time.AddDate it never overflows
// into the following month.
func AddMonths(anchor time.Time, n int) time.Time {
	first := domain.NewDate(anchor.Year(), anchor.Month(), 1).AddDate(0, n, 0)
	return ClampedDate(first.Year(), first.Month(), anchor.Day())
}

// TemplateDueDate returns the first due date for a template item created on today:
// this month at the given day, or next month when that date has already passed.
// A due date equal to today is kept. day <= 0 means DefaultTemplateDay.
func TemplateDueDate(day int, today time.Time) time.Time {
	if day <= 0 {
		day = DefaultTemplateDay
	}
	today = domain.Date(today)

	due := ClampedDate(today.Year(), today.Month(), day)
	if due.Before(today) {
		next := domain.MonthStart(today).AddDate(0, 1, 0)
		due = ClampedDate(next.Year(), next.Month(), day)
	}
	return due
}
