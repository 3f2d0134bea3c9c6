package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/recurring"
)

// Job result messages.
const (
	MessageSkipped   = "Not the first day of month, skipping"
	MessageProcessed = "Recurrences processed"
)

// RunResult summarizes one invocation of the monthly job.
type RunResult struct {
	Success bool
	Skipped bool
	Date    time.Time
	Message string

	CreatedCount   int
	DuplicateCount int
	NotDueCount    int
	FailedCount    int

	// HistoryFailures counts successors created without their history entry.
	HistoryFailures int
}

// LockKey returns the lock name guarding the job for eval's month.
func LockKey(eval time.Time) string {
	return "fiscal:recurrences:" + eval.Format("2006-01")
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeNotDue
	outcomeDuplicate
)

// RunMonthly creates the successor of every fulfilled recurring occurrence that
// is due in eval's month. A zero eval means today. On any day other than the
// first of the month it does nothing and reports a skip.
//
// Each source is processed on its own: a failure is logged and counted, and the
// loop moves on. Only a failure to list sources or take the lock fails the run.
func (s *Service) RunMonthly(ctx context.Context, eval time.Time) (*RunResult, error) {
	if eval.IsZero() {
		eval = s.now()
	}
	eval = domain.Date(eval)

	if eval.Day() != 1 {
		slog.InfoContext(ctx, "Monthly recurrence job skipped", "date", domain.FormatDate(eval))
		return &RunResult{Success: true, Skipped: true, Date: eval, Message: MessageSkipped}, nil
	}

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, LockKey(eval))
		if err != nil {
			return nil, fmt.Errorf("failed to obtain job lock: %w", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "Failed to release job lock", "key", LockKey(eval), "error", err)
			}
		}()
	}

	sources, err := s.repo.FindOccurrences(ctx, domain.OccurrenceFilter{SourcesOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to find recurrence sources: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurrence sources", "date", domain.FormatDate(eval), "count", len(sources))

	result := &RunResult{Success: true, Date: eval, Message: MessageProcessed}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("monthly job interrupted: %w", err)
		}

		out, err := s.processSource(ctx, source, eval, result)
		if err != nil {
			result.FailedCount++
			s.metrics.add(ctx, s.metrics.failed, string(source.Kind))
			slog.ErrorContext(ctx, "Failed to process recurrence source", append(logAttrs(source), "error", err)...)
			continue
		}

		switch out {
		case outcomeCreated:
			result.CreatedCount++
			s.metrics.add(ctx, s.metrics.created, string(source.Kind))
		case outcomeDuplicate:
			result.DuplicateCount++
			s.metrics.add(ctx, s.metrics.duplicates, string(source.Kind))
		case outcomeNotDue:
			result.NotDueCount++
		}
	}

	slog.InfoContext(ctx, "Monthly recurrence job finished",
		"date", domain.FormatDate(eval),
		"created", result.CreatedCount,
		"duplicates", result.DuplicateCount,
		"failed", result.FailedCount,
		"history_failures", result.HistoryFailures)

	return result, nil
}

func (s *Service) processSource(ctx context.Context, source *domain.Occurrence, eval time.Time, result *RunResult) (outcome, error) {
	if !recurring.IsOccurrenceDue(source.Recurrence, source.PeriodDate(), eval) {
		return outcomeNotDue, nil
	}

	next, err := s.generator.Successor(source, eval)
	if err != nil {
		return 0, err
	}

	// Scoped to eval's month even when the adjusted due date left it.
	period := domain.MonthStart(eval)
	existing, err := s.repo.FindOccurrences(ctx, domain.OccurrenceFilter{
		ClientID:    next.ClientID,
		PeriodMonth: &period,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find existing occurrences: %w", err)
	}

	check := dedup.CheckOccurrence(dedup.CandidateFrom(next), existing)
	if check.Blocking() {
		slog.InfoContext(ctx, "Successor already exists, skipping", append(logAttrs(source), "existing_id", check.Match.ID)...)
		return outcomeDuplicate, nil
	}
	if check.IsDuplicate() {
		// Non-blocking tiers are logged only.
		slog.WarnContext(ctx, "Creating successor despite similar occurrence", append(logAttrs(source), "level", check.Level, "existing_id", check.Match.ID)...)
	}

	historyOK, err := s.createWithLineage(ctx, source, next, eval)
	if isDuplicate(err) {
		slog.InfoContext(ctx, "Successor created concurrently, skipping", logAttrs(source)...)
		return outcomeDuplicate, nil
	}
	if err != nil {
		return 0, err
	}
	if !historyOK {
		result.HistoryFailures++
	}

	return outcomeCreated, nil
}

// createWithLineage persists next and its history entry. In strict mode both are
// written in one transaction. Otherwise a history failure is logged and reported
// through the boolean.
func (s *Service) createWithLineage(ctx context.Context, source, next *domain.Occurrence, eval time.Time) (bool, error) {
	entry, err := historyEntry(source, next, eval)
	if err != nil {
		return false, err
	}

	if s.config.StrictHistory {
		err := s.repo.AtomicScheduling(ctx, func(tx Repository) error {
			if _, err := tx.CreateOccurrence(ctx, next); err != nil {
				return fmt.Errorf("failed to create occurrence: %w", err)
			}
			if err := tx.CreateHistoryEntry(ctx, entry); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrHistoryWrite, err)
			}
			return nil
		})
		return err == nil, err
	}

	if _, err := s.repo.CreateOccurrence(ctx, next); err != nil {
		return false, fmt.Errorf("failed to create occurrence: %w", err)
	}
	if err := s.repo.CreateHistoryEntry(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "Failed to record recurrence history", append(logAttrs(source), "occurrence_id", next.ID, "error", err)...)
		return false, nil
	}
	return true, nil
}

func historyEntry(source, next *domain.Occurrence, eval time.Time) (*domain.HistoryEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate history ID: %w", err)
	}
	return &domain.HistoryEntry{
		ID:              id.String(),
		EntityType:      next.Kind.EntityType(),
		EntityID:        next.ID,
		OriginalID:      source.ID,
		CreatedBySystem: true,
		CreationDate:    eval,
	}, nil
}

// isDuplicate reports whether err came from the storage unique key.
func isDuplicate(err error) bool {
	return errors.Is(err, domain.ErrDuplicateOccurrence)
}

func logAttrs(source *domain.Occurrence) []any {
	return []any{"source_id", source.ID, "client_id", source.ClientID, "title", source.Title}
}
