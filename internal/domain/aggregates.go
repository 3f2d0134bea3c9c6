package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Occurrence is one concrete instance of an obligation or tax, with its own due date.
// Obligations and taxes share this shape and are told apart by Kind.
type Occurrence struct {
	ID       string
	ClientID string
	Kind     Kind

	Title       string
	Description string
	Notes       string
	Responsible string
	Amount      decimal.Decimal

	// DueDate is the (possibly adjusted) calendar date the occurrence is due.
	// OriginalDueDate is set only when a weekend/holiday shift moved it.
	DueDate         time.Time
	OriginalDueDate *time.Time

	Status        Status
	Recurrence    Recurrence
	WeekendPolicy WeekendPolicy

	// Lineage
	ParentID    *string
	AutoCreated bool

	CompletedAt *time.Time
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRecurrenceSource reports whether the occurrence can spawn its successor:
// it must recur and must have been fulfilled.
func (o *Occurrence) IsRecurrenceSource() bool {
	return o.Recurrence.Recurs() && o.Status == o.Kind.FulfilledStatus()
}

// PeriodDate is the computed date before any weekend/holiday shift. Cadence,
// day-of-month anchoring and the duplicate scope all key on it, so a shift
// into a neighbouring month never moves the occurrence out of its period.
func (o *Occurrence) PeriodDate() time.Time {
	if o.OriginalDueDate != nil {
		return *o.OriginalDueDate
	}
	return o.DueDate
}

// Installment is one payment of an installment plan.
type Installment struct {
	ID           string
	ObligationID *string
	ClientID     string

	InstallmentNumber int
	TotalInstallments int

	DueDate         time.Time
	OriginalDueDate *time.Time

	Status   InstallmentStatus
	Amount   decimal.Decimal
	Protocol *string
	PaidAt   *time.Time

	CreatedAt time.Time
}

// Template is a reusable set of occurrence definitions applied to new clients
// whose tax regime and business activity match.
type Template struct {
	ID                 string
	Name               string
	Description        string
	TaxRegimes         []string
	BusinessActivities []BusinessActivity
	Items              []TemplateItem

	// Single-item fields kept for templates created before Items existed.
	Kind       Kind
	Recurrence Recurrence
	DayOfMonth int

	CreatedAt time.Time
}

// TemplateItem describes one occurrence a template generates.
type TemplateItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        Kind       `json:"type"`
	Recurrence  Recurrence `json:"recurrence"`
	DayOfMonth  int        `json:"day_of_month"`

	WeekendRule WeekendPolicy `json:"weekend_rule,omitempty"`
	Sphere      string        `json:"sphere,omitempty"` // federal, state, municipal
}

// Client is an accounting-office customer.
type Client struct {
	ID               string
	Name             string
	CNPJ             string
	TaxRegime        string
	BusinessActivity BusinessActivity
	CreatedAt        time.Time
}

// HistoryEntry is the append-only audit record of an auto-created occurrence.
type HistoryEntry struct {
	ID              string
	EntityType      EntityType
	EntityID        string
	OriginalID      string
	CreatedBySystem bool
	CreationDate    time.Time
}
