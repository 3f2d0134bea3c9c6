package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/recurring"
)

// Config holds configuration for the Service.
type Config struct {
	// DefaultWeekendPolicy applies to occurrences without their own policy.
	DefaultWeekendPolicy domain.WeekendPolicy

	// StrictHistory writes each successor and its history entry in one
	// transaction. When false, history failures are logged and counted only.
	StrictHistory bool
}

// Service provides occurrence scheduling: the monthly recurrence job and
// interactive occurrence management.
type Service struct {
	repo      Repository
	generator *recurring.Generator
	locker    Locker
	config    Config
	now       func() time.Time
	metrics   *jobMetrics
}

// Option is a functional option for configuring Service.
type Option func(*Service)

// WithLocker guards RunMonthly with a distributed lock.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithClock overrides the clock used for timestamps and default evaluation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new scheduling service.
func NewService(repo Repository, adjuster recurring.Adjuster, config Config, opts ...Option) *Service {
	if config.DefaultWeekendPolicy == "" {
		config.DefaultWeekendPolicy = domain.WeekendPostpone
	}

	s := &Service{
		repo:      repo,
		generator: recurring.NewGenerator(adjuster, config.DefaultWeekendPolicy),
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		metrics:   newJobMetrics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateOccurrenceParams holds the input for an interactive occurrence creation.
type CreateOccurrenceParams struct {
	ClientID      string
	Kind          string
	Title         string
	Description   string
	Notes         string
	Responsible   string
	Amount        decimal.Decimal
	DueDate       time.Time
	Status        string
	Recurrence    string
	WeekendPolicy string

	// Confirm acknowledges a probable duplicate.
	Confirm bool
}

// CreateOccurrenceResult is a created occurrence plus any non-blocking duplicate warning.
type CreateOccurrenceResult struct {
	Occurrence *domain.Occurrence
	Warning    *dedup.Result
}

// CreateOccurrence validates, adjusts and persists a user-entered occurrence.
// An exact duplicate fails with a *dedup.ConflictError wrapping ErrDuplicateOccurrence.
// A probable duplicate fails with one wrapping ErrConfirmationRequired unless
// params.Confirm is set.
func (s *Service) CreateOccurrence(ctx context.Context, params CreateOccurrenceParams) (*CreateOccurrenceResult, error) {
	occ, err := s.buildOccurrence(params)
	if err != nil {
		return nil, err
	}

	period := domain.MonthStart(occ.PeriodDate())
	existing, err := s.repo.FindOccurrences(ctx, domain.OccurrenceFilter{
		ClientID:    occ.ClientID,
		PeriodMonth: &period,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find existing occurrences: %w", err)
	}

	result := &CreateOccurrenceResult{}
	check := dedup.CheckOccurrence(dedup.CandidateFrom(occ), existing)
	switch {
	case check.Blocking():
		return nil, &dedup.ConflictError{Err: domain.ErrDuplicateOccurrence, Level: check.Level, Message: check.Message, Existing: check.Match}
	case check.NeedsConfirmation() && !params.Confirm:
		return nil, &dedup.ConflictError{Err: domain.ErrConfirmationRequired, Level: check.Level, Message: check.Message, Existing: check.Match}
	case check.IsDuplicate():
		result.Warning = &check
	}

	created, err := s.repo.CreateOccurrence(ctx, occ)
	if err != nil {
		return nil, fmt.Errorf("failed to create occurrence: %w", err)
	}
	result.Occurrence = created

	return result, nil
}

func (s *Service) buildOccurrence(params CreateOccurrenceParams) (*domain.Occurrence, error) {
	if params.ClientID == "" {
		return nil, domain.ErrClientRequired
	}
	title, err := domain.NewTitle(params.Title)
	if err != nil {
		return nil, err
	}
	kind, err := domain.NewKind(params.Kind)
	if err != nil {
		return nil, err
	}
	status, err := domain.NewStatus(kind, params.Status)
	if err != nil {
		return nil, err
	}
	recurrence, err := domain.NewRecurrence(params.Recurrence)
	if err != nil {
		return nil, err
	}
	policy, err := domain.NewWeekendPolicy(params.WeekendPolicy)
	if err != nil {
		return nil, err
	}
	if params.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", domain.ErrInvalidDate)
	}
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, params.Amount)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	adj := s.generator.Resolve(domain.Date(params.DueDate), policy)
	now := s.now()

	occ := &domain.Occurrence{
		ID:              id.String(),
		ClientID:        params.ClientID,
		Kind:            kind,
		Title:           title.String(),
		Description:     params.Description,
		Notes:           params.Notes,
		Responsible:     params.Responsible,
		Amount:          params.Amount,
		DueDate:         adj.DueDate,
		OriginalDueDate: adj.Original,
		Status:          status,
		Recurrence:      recurrence,
		WeekendPolicy:   policy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == kind.FulfilledStatus() {
		setFulfilledAt(occ, now)
	}

	return occ, nil
}

// UpdateStatus changes an occurrence's status, recording or clearing the
// completion/payment timestamp accordingly.
func (s *Service) UpdateStatus(ctx context.Context, id, statusStr string) (*domain.Occurrence, error) {
	if id == "" {
		return nil, domain.ErrOccurrenceNotFound
	}

	occ, err := s.repo.FindOccurrenceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find occurrence: %w", err)
	}

	status, err := domain.NewStatus(occ.Kind, statusStr)
	if err != nil {
		return nil, err
	}

	var fulfilledAt *time.Time
	if status == occ.Kind.FulfilledStatus() {
		now := s.now()
		fulfilledAt = &now
	}

	updated, err := s.repo.UpdateOccurrenceStatus(ctx, id, status, fulfilledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update occurrence status: %w", err)
	}

	return updated, nil
}

// ListClientOccurrences returns a client's occurrences, optionally restricted to month's calendar month.
func (s *Service) ListClientOccurrences(ctx context.Context, clientID string, month *time.Time) ([]*domain.Occurrence, error) {
	if clientID == "" {
		return nil, domain.ErrClientRequired
	}

	filter := domain.OccurrenceFilter{ClientID: clientID}
	if month != nil {
		from, to := domain.MonthRange(*month)
		filter.DueFrom = &from
		filter.DueTo = &to
	}

	occurrences, err := s.repo.FindOccurrences(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}

	return occurrences, nil
}

func setFulfilledAt(occ *domain.Occurrence, at time.Time) {
	if occ.Kind == domain.KindTax {
		occ.PaidAt = &at
		return
	}
	occ.CompletedAt = &at
}
