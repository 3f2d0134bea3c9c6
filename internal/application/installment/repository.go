package installment

//go:generate mockgen -source=repository.go -destination=mock_repository_test.go -package=installment

import (
	"context"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Repository defines storage operations for installment plans.
type Repository interface {
	// FindInstallments returns installments matching filter, ordered by
	// installment number then due date.
	FindInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error)

	// FindInstallmentByID retrieves a single installment.
	// Returns domain.ErrInstallmentNotFound if it doesn't exist.
	FindInstallmentByID(ctx context.Context, id string) (*domain.Installment, error)

	// CreateInstallment persists one installment. Safe for concurrent use.
	CreateInstallment(ctx context.Context, inst *domain.Installment) (*domain.Installment, error)

	// UpdateInstallmentStatus sets the status and paid_at (nil clears it).
	// Returns domain.ErrInstallmentNotFound if it doesn't exist.
	UpdateInstallmentStatus(ctx context.Context, id string, status domain.InstallmentStatus, paidAt *time.Time) (*domain.Installment, error)
}
