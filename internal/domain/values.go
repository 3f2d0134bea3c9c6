package domain

// Kind distinguishes the two record families that share the scheduling rules.
type Kind string

const (
	KindObligation Kind = "obligation"
	KindTax        Kind = "tax"
)

// Status represents the lifecycle state of an occurrence.
// Obligations finish as completed, taxes finish as paid.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaid       Status = "paid"
	StatusOverdue    Status = "overdue"
)

// InstallmentStatus represents the lifecycle state of an installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

// Recurrence is the cadence at which an occurrence repeats.
type Recurrence string

const (
	RecurrenceNone       Recurrence = "none"
	RecurrenceMonthly    Recurrence = "monthly"
	RecurrenceQuarterly  Recurrence = "quarterly"
	RecurrenceSemiannual Recurrence = "semiannual"
	RecurrenceAnnual     Recurrence = "annual"
)

// WeekendPolicy decides how a due date that lands on a non-business day is shifted.
// An empty policy means "use the office default".
type WeekendPolicy string

const (
	WeekendAdvance  WeekendPolicy = "advance"
	WeekendPostpone WeekendPolicy = "postpone"
	WeekendKeep     WeekendPolicy = "keep"
)

// BusinessActivity is the kind of business a client runs. Templates filter on it.
type BusinessActivity string

const (
	ActivityCommerce BusinessActivity = "commerce"
	ActivityService  BusinessActivity = "service"
	ActivityBoth     BusinessActivity = "both"
)

// EntityType labels the record a history entry points at.
type EntityType string

const (
	EntityObligation  EntityType = "obligation"
	EntityTax         EntityType = "tax"
	EntityInstallment EntityType = "installment"
)
