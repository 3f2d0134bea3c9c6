package domain

import "time"

// OccurrenceFilter selects occurrences. Zero-valued fields apply no filter.
//
// Common use cases:
//   - duplication scope: ClientID=X, PeriodMonth=first of the month
//   - recurrence sources: SourcesOnly=true
type OccurrenceFilter struct {
	ClientID string
	Kind     Kind
	Statuses []Status

	// SourcesOnly restricts to recurring occurrences in their kind's fulfilled status.
	SourcesOnly bool

	// Inclusive due-date range.
	DueFrom *time.Time
	DueTo   *time.Time

	// PeriodMonth matches occurrences whose PeriodDate falls in the same month.
	PeriodMonth *time.Time
}

// MonthRange returns the first and last calendar day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := MonthStart(t)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// InstallmentFilter selects installments. Zero-valued fields apply no filter.
type InstallmentFilter struct {
	ClientID     string
	ObligationID string
}

// TemplateFilter selects templates. An empty TaxRegime returns every template.
type TemplateFilter struct {
	TaxRegime string
}
