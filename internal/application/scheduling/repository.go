package scheduling

import (
	"context"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Repository defines storage operations for occurrence scheduling.
// All create/update operations return the entity as persisted.
type Repository interface {
	// === Occurrence Operations ===

	// FindOccurrences returns occurrences matching filter, ordered by due date.
	FindOccurrences(ctx context.Context, filter domain.OccurrenceFilter) ([]*domain.Occurrence, error)

	// FindOccurrenceByID retrieves a single occurrence.
	// Returns domain.ErrOccurrenceNotFound if it doesn't exist.
	FindOccurrenceByID(ctx context.Context, id string) (*domain.Occurrence, error)

	// CreateOccurrence persists a new occurrence.
	// Returns domain.ErrDuplicateOccurrence when the (client, title, kind, month)
	// unique key is already taken.
	CreateOccurrence(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error)

	// UpdateOccurrenceStatus sets the status. fulfilledAt is stored as completed_at
	// or paid_at depending on the occurrence kind; nil clears both.
	// Returns domain.ErrOccurrenceNotFound if it doesn't exist.
	UpdateOccurrenceStatus(ctx context.Context, id string, status domain.Status, fulfilledAt *time.Time) (*domain.Occurrence, error)

	// === History Operations ===

	// CreateHistoryEntry appends a lineage record. Entries are never updated.
	CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error

	// === Transactions ===

	// AtomicScheduling runs fn within a transaction. The repository passed to fn
	// is bound to the transaction; any error rolls everything back.
	AtomicScheduling(ctx context.Context, fn func(tx Repository) error) error
}

// Locker guards the monthly job against concurrent runs.
type Locker interface {
	// Obtain acquires key. Returns domain.ErrJobLocked if another holder has it.
	Obtain(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}
