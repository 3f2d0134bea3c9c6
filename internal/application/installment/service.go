package installment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/recurring"
)

// Default configuration values.
const (
	DefaultBatchSize           = 10
	DefaultBatchDelay          = 100 * time.Millisecond
	DefaultLargeBatchThreshold = 100
)

// Batch result messages.
const (
	MessageCreated = "Installments created"
	MessagePartial = "Some installments may have been created"
)

// Config holds configuration for the Service.
type Config struct {
	// BatchSize is how many installments are written concurrently per chunk.
	BatchSize int

	// BatchDelay is the pause between chunks.
	BatchDelay time.Duration

	// MaxConcurrentWrites bounds the inserts in flight within a chunk.
	// Zero or anything above BatchSize means the whole chunk at once.
	MaxConcurrentWrites int

	// LargeBatchThreshold is the count above which a batch needs confirmation.
	LargeBatchThreshold int

	// DefaultWeekendPolicy applies when a batch does not name one.
	DefaultWeekendPolicy domain.WeekendPolicy
}

// Service creates and updates installment plans.
type Service struct {
	repo      Repository
	generator *recurring.Generator
	config    Config
	now       func() time.Time
}

// NewService creates a new installment service.
// Applies defaults for zero or invalid config values.
func NewService(repo Repository, adjuster recurring.Adjuster, config Config) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.BatchDelay <= 0 {
		config.BatchDelay = DefaultBatchDelay
	}
	if config.LargeBatchThreshold <= 0 {
		config.LargeBatchThreshold = DefaultLargeBatchThreshold
	}
	if config.MaxConcurrentWrites <= 0 || config.MaxConcurrentWrites > config.BatchSize {
		config.MaxConcurrentWrites = config.BatchSize
	}

	return &Service{
		repo:      repo,
		generator: recurring.NewGenerator(adjuster, config.DefaultWeekendPolicy),
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// BatchParams describes an installment plan to create.
type BatchParams struct {
	ClientID      string
	ObligationID  *string
	Total         int
	AnchorDate    time.Time
	Amount        decimal.Decimal
	Protocol      string
	WeekendPolicy string

	// Confirmed acknowledges a batch above the large-batch threshold.
	Confirmed bool
}

// BatchResult reports what a batch run wrote.
type BatchResult struct {
	Installments []*domain.Installment

	Created   int
	Skipped   int
	Failed    int
	Cancelled bool
	Message   string
}

// CreateBatch builds the plan's installments and writes them in sequential chunks
// of concurrent inserts. Writes are not atomic: a failed insert does not undo the
// others, and cancelling ctx stops the run before the next chunk. Either case is
// reported with a non-committal message.
//
// A duplicate of the first installment blocks the whole batch with a
// *dedup.ConflictError. Later installments that already exist are skipped.
func (s *Service) CreateBatch(ctx context.Context, params BatchParams) (*BatchResult, error) {
	if params.ClientID == "" {
		return nil, domain.ErrClientRequired
	}
	if params.Total < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidInstallmentCount, params.Total)
	}
	if params.AnchorDate.IsZero() {
		return nil, fmt.Errorf("%w: anchor date is required", domain.ErrInvalidDate)
	}
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, params.Amount)
	}
	policy, err := domain.NewWeekendPolicy(params.WeekendPolicy)
	if err != nil {
		return nil, err
	}
	if params.Total > s.config.LargeBatchThreshold && !params.Confirmed {
		return nil, fmt.Errorf("%w: %d installments exceeds %d", domain.ErrConfirmationRequired, params.Total, s.config.LargeBatchThreshold)
	}

	var protocol *string
	if p := strings.TrimSpace(params.Protocol); p != "" {
		protocol = &p
	}

	plan, err := s.generator.Installments(recurring.InstallmentPlan{
		ClientID:     params.ClientID,
		ObligationID: params.ObligationID,
		Total:        params.Total,
		Anchor:       domain.Date(params.AnchorDate),
		Amount:       params.Amount,
		Protocol:     protocol,
		Policy:       policy,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindInstallments(ctx, domain.InstallmentFilter{ClientID: params.ClientID})
	if err != nil {
		return nil, fmt.Errorf("failed to find existing installments: %w", err)
	}

	result := &BatchResult{}
	pending := make([]*domain.Installment, 0, len(plan))
	for i, inst := range plan {
		check := dedup.CheckInstallment(candidate(inst), existing)
		if !check.IsDuplicate() {
			pending = append(pending, inst)
			continue
		}
		if i == 0 {
			return nil, &dedup.ConflictError{Err: domain.ErrDuplicateInstallment, Level: check.Level, Message: check.Message, Existing: check.Match}
		}
		result.Skipped++
	}

	s.writeChunks(ctx, pending, result)

	result.Message = MessageCreated
	if result.Failed > 0 || result.Cancelled {
		result.Message = MessagePartial
	}

	slog.InfoContext(ctx, "Installment batch finished",
		"client_id", params.ClientID,
		"total", params.Total,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"cancelled", result.Cancelled)

	return result, nil
}

func (s *Service) writeChunks(ctx context.Context, pending []*domain.Installment, result *BatchResult) {
	for start := 0; start < len(pending); start += s.config.BatchSize {
		if start > 0 && !s.pause(ctx) {
			result.Cancelled = true
			return
		}
		if ctx.Err() != nil {
			result.Cancelled = true
			return
		}

		chunk := pending[start:min(start+s.config.BatchSize, len(pending))]
		created := make([]*domain.Installment, len(chunk))
		errs := make([]error, len(chunk))

		// A plain Group: one failed insert does not cancel its siblings.
		var g errgroup.Group
		g.SetLimit(s.config.MaxConcurrentWrites)
		for i, inst := range chunk {
			g.Go(func() error {
				created[i], errs[i] = s.repo.CreateInstallment(ctx, inst)
				if errs[i] != nil {
					return fmt.Errorf("installment %d: %w", inst.InstallmentNumber, errs[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			slog.WarnContext(ctx, "Installment chunk finished with failures",
				"chunk_start", start,
				"chunk_size", len(chunk),
				"first_error", err)
		}

		for i, err := range errs {
			if err != nil {
				result.Failed++
				slog.ErrorContext(ctx, "Failed to create installment",
					"client_id", chunk[i].ClientID,
					"installment_number", chunk[i].InstallmentNumber,
					"error", err)
				continue
			}
			result.Created++
			result.Installments = append(result.Installments, created[i])
		}
	}
}

// pause waits BatchDelay. Returns false if ctx is cancelled first.
func (s *Service) pause(ctx context.Context) bool {
	timer := time.NewTimer(s.config.BatchDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func candidate(inst *domain.Installment) dedup.InstallmentCandidate {
	c := dedup.InstallmentCandidate{
		ClientID:          inst.ClientID,
		InstallmentNumber: inst.InstallmentNumber,
		DueDate:           inst.DueDate,
	}
	if inst.Protocol != nil {
		c.Protocol = *inst.Protocol
	}
	return c
}

// UpdateStatus changes an installment's status. Paying records paid_at; any
// other status clears it.
func (s *Service) UpdateStatus(ctx context.Context, id, statusStr string) (*domain.Installment, error) {
	if id == "" {
		return nil, domain.ErrInstallmentNotFound
	}

	status, err := domain.NewInstallmentStatus(statusStr)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	if status == domain.InstallmentPaid {
		now := s.now()
		paidAt = &now
	}

	updated, err := s.repo.UpdateInstallmentStatus(ctx, id, status, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update installment status: %w", err)
	}

	return updated, nil
}

// ListInstallments returns the installments matching filter.
func (s *Service) ListInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	installments, err := s.repo.FindInstallments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return installments, nil
}
