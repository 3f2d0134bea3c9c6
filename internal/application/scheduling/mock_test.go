package scheduling

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// mockRepo keeps occurrences in memory. Func fields override individual
// operations when a test needs to inject failures.
type mockRepo struct {
	mu          sync.Mutex
	occurrences []*domain.Occurrence
	history     []*domain.HistoryEntry
	findCalls   int

	findOccurrencesFn    func(ctx context.Context, filter domain.OccurrenceFilter) ([]*domain.Occurrence, error)
	createOccurrenceFn   func(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error)
	createHistoryEntryFn func(ctx context.Context, entry *domain.HistoryEntry) error
}

func newMockRepo(seed ...*domain.Occurrence) *mockRepo {
	return &mockRepo{occurrences: seed}
}

func (m *mockRepo) FindOccurrences(ctx context.Context, filter domain.OccurrenceFilter) ([]*domain.Occurrence, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()

	if m.findOccurrencesFn != nil {
		return m.findOccurrencesFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Occurrence
	for _, o := range m.occurrences {
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		if filter.Kind != "" && o.Kind != filter.Kind {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		if filter.SourcesOnly && !o.IsRecurrenceSource() {
			continue
		}
		if filter.DueFrom != nil && o.DueDate.Before(*filter.DueFrom) {
			continue
		}
		if filter.DueTo != nil && o.DueDate.After(*filter.DueTo) {
			continue
		}
		if filter.PeriodMonth != nil && !domain.SameMonth(o.PeriodDate(), *filter.PeriodMonth) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockRepo) FindOccurrenceByID(_ context.Context, id string) (*domain.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.occurrences {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOccurrenceNotFound
}

func (m *mockRepo) CreateOccurrence(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error) {
	if m.createOccurrenceFn != nil {
		return m.createOccurrenceFn(ctx, occ)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.occurrences = append(m.occurrences, occ)
	return occ, nil
}

func (m *mockRepo) UpdateOccurrenceStatus(_ context.Context, id string, status domain.Status, fulfilledAt *time.Time) (*domain.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.occurrences {
		if o.ID != id {
			continue
		}
		o.Status = status
		o.CompletedAt, o.PaidAt = nil, nil
		if fulfilledAt != nil {
			if o.Kind == domain.KindTax {
				o.PaidAt = fulfilledAt
			} else {
				o.CompletedAt = fulfilledAt
			}
		}
		return o, nil
	}
	return nil, domain.ErrOccurrenceNotFound
}

func (m *mockRepo) CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error {
	if m.createHistoryEntryFn != nil {
		return m.createHistoryEntryFn(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entry)
	return nil
}

// AtomicScheduling executes callback without transaction (tests don't need real transactions)
func (m *mockRepo) AtomicScheduling(_ context.Context, fn func(tx Repository) error) error {
	return fn(m)
}

func (m *mockRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.occurrences)
}

type mockLock struct {
	released bool
}

func (l *mockLock) Release(context.Context) error {
	l.released = true
	return nil
}

type mockLocker struct {
	obtainFn func(ctx context.Context, key string) (Lock, error)
	keys     []string
}

func (m *mockLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	m.keys = append(m.keys, key)
	return m.obtainFn(ctx, key)
}
