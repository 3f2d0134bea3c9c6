package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/calendar"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/ptr"
)

func newTestService(repo Repository, config Config, opts ...Option) *Service {
	adjuster := calendar.NewResolver(calendar.NewDefault(calendar.Brazil))
	return NewService(repo, adjuster, config, opts...)
}

func source(id, clientID string, due time.Time, recurrence domain.Recurrence) *domain.Occurrence {
	return &domain.Occurrence{
		ID:            id,
		ClientID:      clientID,
		Kind:          domain.KindObligation,
		Title:         "DAS - Simples Nacional",
		DueDate:       due,
		Status:        domain.StatusCompleted,
		Recurrence:    recurrence,
		WeekendPolicy: domain.WeekendPostpone,
		CompletedAt:   ptr.To(due),
	}
}

func TestRunMonthly_SkipsWhenNotFirstOfMonth(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
	locker := &mockLocker{obtainFn: func(context.Context, string) (Lock, error) {
		t.Fatal("lock must not be taken on skip days")
		return nil, nil
	}}
	svc := newTestService(repo, Config{}, WithLocker(locker))

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.March, 15))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Equal(t, MessageSkipped, result.Message)
	assert.Zero(t, result.CreatedCount)
	assert.Zero(t, repo.findCalls)
	assert.Equal(t, 1, repo.count())
}

func TestRunMonthly_CreatesSuccessorWithLineage(t *testing.T) {
	src := source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly)
	repo := newMockRepo(src)
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Equal(t, MessageProcessed, result.Message)
	assert.Equal(t, 1, result.CreatedCount)
	require.Equal(t, 2, repo.count())

	created := repo.occurrences[1]
	assert.Equal(t, domain.NewDate(2025, time.February, 20), created.DueDate)
	assert.Nil(t, created.OriginalDueDate)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, "src", *created.ParentID)
	assert.True(t, created.AutoCreated)
	assert.Equal(t, domain.StatusPending, created.Status)

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	assert.Equal(t, created.ID, entry.EntityID)
	assert.Equal(t, "src", entry.OriginalID)
	assert.Equal(t, domain.EntityObligation, entry.EntityType)
	assert.True(t, entry.CreatedBySystem)
	assert.Equal(t, domain.NewDate(2025, time.February, 1), entry.CreationDate)
}

func TestRunMonthly_ClampsAnchorDay(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.May, 31), domain.RecurrenceMonthly))
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.June, 1))
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)

	assert.Equal(t, domain.NewDate(2025, time.June, 30), repo.occurrences[1].DueDate)
}

func TestRunMonthly_AdjustmentAcrossMonthBoundary(t *testing.T) {
	t.Run("advance into the previous month still creates the successor", func(t *testing.T) {
		src := source("src", "client-1", domain.NewDate(2025, time.October, 1), domain.RecurrenceMonthly)
		src.WeekendPolicy = domain.WeekendAdvance
		repo := newMockRepo(src)
		svc := newTestService(repo, Config{})

		result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.November, 1))
		require.NoError(t, err)
		require.Equal(t, 1, result.CreatedCount)
		assert.Zero(t, result.DuplicateCount)

		created := repo.occurrences[1]
		assert.Equal(t, domain.NewDate(2025, time.October, 31), created.DueDate)
		require.NotNil(t, created.OriginalDueDate)
		assert.Equal(t, domain.NewDate(2025, time.November, 1), *created.OriginalDueDate)

		again, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.November, 1))
		require.NoError(t, err)
		assert.Zero(t, again.CreatedCount)
		assert.Equal(t, 1, again.DuplicateCount)
	})

	t.Run("postponed into the next month does not block that month", func(t *testing.T) {
		src := source("src", "client-1", domain.NewDate(2025, time.December, 1), domain.RecurrenceMonthly)
		src.OriginalDueDate = ptr.To(domain.NewDate(2025, time.November, 30))
		repo := newMockRepo(src)
		svc := newTestService(repo, Config{})

		result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.December, 1))
		require.NoError(t, err)
		require.Equal(t, 1, result.CreatedCount)
		assert.Zero(t, result.DuplicateCount)

		created := repo.occurrences[1]
		assert.Equal(t, domain.NewDate(2025, time.December, 30), created.DueDate)
		assert.Nil(t, created.OriginalDueDate)
	})

	t.Run("anchors on the unadjusted day of month", func(t *testing.T) {
		src := source("src", "client-1", domain.NewDate(2025, time.June, 2), domain.RecurrenceMonthly)
		src.OriginalDueDate = ptr.To(domain.NewDate(2025, time.May, 31))

		repo := newMockRepo(src)
		svc := newTestService(repo, Config{})
		result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.June, 1))
		require.NoError(t, err)
		require.Equal(t, 1, result.CreatedCount)
		assert.Equal(t, domain.NewDate(2025, time.June, 30), repo.occurrences[1].DueDate)

		repo = newMockRepo(src)
		svc = newTestService(repo, Config{})
		result, err = svc.RunMonthly(context.Background(), domain.NewDate(2025, time.July, 1))
		require.NoError(t, err)
		require.Equal(t, 1, result.CreatedCount)
		assert.Equal(t, domain.NewDate(2025, time.July, 31), repo.occurrences[1].DueDate)
	})
}

func TestRunMonthly_SecondRunIsIdempotent(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
	svc := newTestService(repo, Config{})
	eval := domain.NewDate(2025, time.February, 1)

	first, err := svc.RunMonthly(context.Background(), eval)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedCount)

	second, err := svc.RunMonthly(context.Background(), eval)
	require.NoError(t, err)
	assert.Zero(t, second.CreatedCount)
	assert.Equal(t, 1, second.DuplicateCount)
	assert.Equal(t, 2, repo.count())
	assert.Len(t, repo.history, 1)
}

func TestRunMonthly_SkipsSourcesNotDue(t *testing.T) {
	repo := newMockRepo(
		source("quarterly", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceQuarterly),
		source("annual", "client-2", domain.NewDate(2024, time.March, 20), domain.RecurrenceAnnual),
	)
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.Zero(t, result.CreatedCount)
	assert.Equal(t, 2, result.NotDueCount)
	assert.Equal(t, 2, repo.count())
}

func TestRunMonthly_IgnoresUnfulfilledAndNonRecurring(t *testing.T) {
	pending := source("pending", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly)
	pending.Status = domain.StatusPending
	once := source("once", "client-2", domain.NewDate(2025, time.January, 20), domain.RecurrenceNone)

	repo := newMockRepo(pending, once)
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.Zero(t, result.CreatedCount)
	assert.Zero(t, result.NotDueCount)
	assert.Equal(t, 2, repo.count())
}

func TestRunMonthly_ContinuesAfterSourceFailure(t *testing.T) {
	repo := newMockRepo(
		source("src-1", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly),
		source("src-2", "client-2", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly),
	)
	var mu sync.Mutex
	repo.createOccurrenceFn = func(_ context.Context, occ *domain.Occurrence) (*domain.Occurrence, error) {
		if occ.ClientID == "client-1" {
			return nil, errors.New("connection reset")
		}
		mu.Lock()
		defer mu.Unlock()
		repo.occurrences = append(repo.occurrences, occ)
		return occ, nil
	}
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "client-2", repo.occurrences[2].ClientID)
}

func TestRunMonthly_StorageUniqueViolationCountsAsDuplicate(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
	repo.createOccurrenceFn = func(context.Context, *domain.Occurrence) (*domain.Occurrence, error) {
		return nil, domain.ErrDuplicateOccurrence
	}
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.Zero(t, result.CreatedCount)
	assert.Zero(t, result.FailedCount)
	assert.Equal(t, 1, result.DuplicateCount)
}

func TestRunMonthly_FailsWhenSourcesCannotBeListed(t *testing.T) {
	repo := newMockRepo()
	repo.findOccurrencesFn = func(context.Context, domain.OccurrenceFilter) ([]*domain.Occurrence, error) {
		return nil, errors.New("database unreachable")
	}
	svc := newTestService(repo, Config{})

	result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestRunMonthly_HistoryFailure(t *testing.T) {
	historyErr := errors.New("history table locked")

	t.Run("best effort keeps the occurrence", func(t *testing.T) {
		repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
		repo.createHistoryEntryFn = func(context.Context, *domain.HistoryEntry) error { return historyErr }
		svc := newTestService(repo, Config{StrictHistory: false})

		result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
		require.NoError(t, err)

		assert.Equal(t, 1, result.CreatedCount)
		assert.Equal(t, 1, result.HistoryFailures)
		assert.Zero(t, result.FailedCount)
		assert.Equal(t, 2, repo.count())
	})

	t.Run("strict fails the source", func(t *testing.T) {
		repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
		repo.createHistoryEntryFn = func(context.Context, *domain.HistoryEntry) error { return historyErr }
		svc := newTestService(repo, Config{StrictHistory: true})

		result, err := svc.RunMonthly(context.Background(), domain.NewDate(2025, time.February, 1))
		require.NoError(t, err)

		assert.Zero(t, result.CreatedCount)
		assert.Equal(t, 1, result.FailedCount)
	})
}

func TestRunMonthly_Lock(t *testing.T) {
	eval := domain.NewDate(2025, time.February, 1)

	t.Run("held by another run", func(t *testing.T) {
		repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
		locker := &mockLocker{obtainFn: func(context.Context, string) (Lock, error) {
			return nil, domain.ErrJobLocked
		}}
		svc := newTestService(repo, Config{}, WithLocker(locker))

		_, err := svc.RunMonthly(context.Background(), eval)
		require.ErrorIs(t, err, domain.ErrJobLocked)
		assert.Zero(t, repo.findCalls)
	})

	t.Run("released after run", func(t *testing.T) {
		repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
		lock := &mockLock{}
		locker := &mockLocker{obtainFn: func(context.Context, string) (Lock, error) {
			return lock, nil
		}}
		svc := newTestService(repo, Config{}, WithLocker(locker))

		result, err := svc.RunMonthly(context.Background(), eval)
		require.NoError(t, err)

		assert.Equal(t, 1, result.CreatedCount)
		assert.True(t, lock.released)
		assert.Equal(t, []string{"fiscal:recurrences:2025-02"}, locker.keys)
	})
}

func TestRunMonthly_DefaultsToToday(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
	clock := func() time.Time { return time.Date(2025, time.February, 1, 9, 30, 0, 0, time.UTC) }
	svc := newTestService(repo, Config{}, WithClock(clock))

	result, err := svc.RunMonthly(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, domain.NewDate(2025, time.February, 1), result.Date)
	assert.Equal(t, 1, result.CreatedCount)
}

func TestRunMonthly_StopsOnCancelledContext(t *testing.T) {
	repo := newMockRepo(source("src", "client-1", domain.NewDate(2025, time.January, 20), domain.RecurrenceMonthly))
	svc := newTestService(repo, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunMonthly(ctx, domain.NewDate(2025, time.February, 1))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.count())
}
