package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

const installmentColumns = `id, obligation_id, client_id, installment_number, total_installments,
	due_date, original_due_date, status, amount, protocol, paid_at, created_at`

func scanInstallment(row rowScanner) (*domain.Installment, error) {
	var (
		inst                    domain.Installment
		obligationID, protocol  sql.NullString
		dueDate, status, amount string
		originalDueDate, paidAt sql.NullString
		createdAt               string
	)

	err := row.Scan(
		&inst.ID, &obligationID, &inst.ClientID, &inst.InstallmentNumber, &inst.TotalInstallments,
		&dueDate, &originalDueDate, &status, &amount, &protocol, &paidAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if inst.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	if inst.DueDate, err = domain.ParseDate(dueDate); err != nil {
		return nil, err
	}
	if inst.OriginalDueDate, err = parseDatePtr(originalDueDate); err != nil {
		return nil, err
	}
	if inst.PaidAt, err = parseTimestampPtr(paidAt); err != nil {
		return nil, err
	}
	if inst.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}

	inst.ObligationID = nullToStringPtr(obligationID)
	inst.Protocol = nullToStringPtr(protocol)
	inst.Status = domain.InstallmentStatus(status)

	return &inst, nil
}

// FindInstallments returns installments matching filter.
func (s *Store) FindInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.ClientID != "" {
		if err := validateID(filter.ClientID); err != nil {
			return nil, err
		}
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ObligationID != "" {
		if err := validateID(filter.ObligationID); err != nil {
			return nil, err
		}
		clauses = append(clauses, "obligation_id = ?")
		args = append(args, filter.ObligationID)
	}

	query := "SELECT " + installmentColumns + " FROM installments"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY installment_number, due_date"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var installments []*domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate installments: %w", err)
	}

	return installments, nil
}

// FindInstallmentByID retrieves a single installment.
func (s *Store) FindInstallmentByID(ctx context.Context, id string) (*domain.Installment, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	inst, err := scanInstallment(s.q.QueryRowContext(ctx, "SELECT "+installmentColumns+" FROM installments WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, domain.ErrInstallmentNotFound, id)
	}
	return inst, nil
}

// CreateInstallment inserts one installment and reads it back.
func (s *Store) CreateInstallment(ctx context.Context, inst *domain.Installment) (*domain.Installment, error) {
	if err := validateID(inst.ID); err != nil {
		return nil, err
	}
	if err := validateID(inst.ClientID); err != nil {
		return nil, err
	}
	obligationID, err := optionalID(inst.ObligationID)
	if err != nil {
		return nil, err
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO installments (
			id, obligation_id, client_id, installment_number, total_installments,
			due_date, original_due_date, status, amount, protocol, paid_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, obligationID, inst.ClientID, inst.InstallmentNumber, inst.TotalInstallments,
		domain.FormatDate(inst.DueDate), formatDatePtr(inst.OriginalDueDate), string(inst.Status),
		inst.Amount.String(), stringPtrToNull(inst.Protocol), formatTimestampPtr(inst.PaidAt), formatTimestamp(inst.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert installment: %w", mapWriteError(err, domain.ErrClientNotFound))
	}

	return s.FindInstallmentByID(ctx, inst.ID)
}

// UpdateInstallmentStatus sets status and paid_at.
func (s *Store) UpdateInstallmentStatus(ctx context.Context, id string, status domain.InstallmentStatus, paidAt *time.Time) (*domain.Installment, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	res, err := s.q.ExecContext(ctx, "UPDATE installments SET status = ?, paid_at = ? WHERE id = ?",
		string(status), formatTimestampPtr(paidAt), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update installment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstallmentNotFound, id)
	}

	return s.FindInstallmentByID(ctx, id)
}
