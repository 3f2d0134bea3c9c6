package recurring

import (
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Cadence decides, for a calendar-month distance from the anchor, whether a new
// occurrence is due. Evaluation is month-granular: the day of month is ignored.
type Cadence interface {
	// Due reports whether an occurrence falls diffMonths after the anchor month.
	Due(diffMonths int) bool

	// Interval returns the number of months between occurrences, 0 when the cadence never repeats.
	Interval() int
}

// GetCadence returns the cadence for the given recurrence.
// Unknown recurrences never come due.
func GetCadence(r domain.Recurrence) Cadence {
	switch r {
	case domain.RecurrenceMonthly:
		return &IntervalCadence{Months: 1}
	case domain.RecurrenceQuarterly:
		return &IntervalCadence{Months: 3}
	case domain.RecurrenceSemiannual:
		return &IntervalCadence{Months: 6}
	case domain.RecurrenceAnnual:
		return &IntervalCadence{Months: 12}
	default:
		return NeverCadence{}
	}
}

// MonthsBetween returns the calendar-month difference from anchor to eval.
func MonthsBetween(anchor, eval time.Time) int {
	return (eval.Year()-anchor.Year())*12 + int(eval.Month()) - int(anchor.Month())
}

// IsOccurrenceDue reports whether eval's month is an occurrence boundary for
// an anchor date under the recurrence. The anchor month itself is never due.
func IsOccurrenceDue(r domain.Recurrence, anchor, eval time.Time) bool {
	return GetCadence(r).Due(MonthsBetween(anchor, eval))
}
