package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/fiscal/internal/domain"
)

const installmentColumns = `id, obligation_id, client_id, installment_number, total_installments,
	due_date, original_due_date, status, amount::text, protocol, paid_at, created_at`

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var (
		inst                       domain.Installment
		id, obligationID, clientID pgtype.UUID
		number, total              int32
		dueDate, originalDueDate   pgtype.Date
		status, amount             string
		protocol                   pgtype.Text
		paidAt, createdAt          pgtype.Timestamptz
	)

	err := row.Scan(&id, &obligationID, &clientID, &number, &total,
		&dueDate, &originalDueDate, &status, &amount, &protocol, &paidAt, &createdAt)
	if err != nil {
		return nil, err
	}

	inst.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}

	inst.ID = pgtypeToUUIDString(id)
	inst.ObligationID = pgtypeToUUIDPtr(obligationID)
	inst.ClientID = pgtypeToUUIDString(clientID)
	inst.InstallmentNumber = int(number)
	inst.TotalInstallments = int(total)
	inst.DueDate = pgtypeToDate(dueDate)
	inst.OriginalDueDate = pgtypeToDatePtr(originalDueDate)
	inst.Status = domain.InstallmentStatus(status)
	inst.Protocol = pgtypeToTextPtr(protocol)
	inst.PaidAt = pgtypeToTimePtr(paidAt)
	inst.CreatedAt = pgtypeToTime(createdAt)

	return &inst, nil
}

// FindInstallments returns installments matching filter.
func (s *Store) FindInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.ClientID != "" {
		id, err := parseID(filter.ClientID)
		if err != nil {
			return nil, err
		}
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.ObligationID != "" {
		id, err := parseID(filter.ObligationID)
		if err != nil {
			return nil, err
		}
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("obligation_id = $%d", len(args)))
	}

	query := "SELECT " + installmentColumns + " FROM installments"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY installment_number, due_date"

	rows, err := s.db.Query(ctx, query, args...)
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
	instID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	inst, err := scanInstallment(s.db.QueryRow(ctx, "SELECT "+installmentColumns+" FROM installments WHERE id = $1", instID))
	if err != nil {
		return nil, notFound(err, domain.ErrInstallmentNotFound, id)
	}
	return inst, nil
}

// CreateInstallment inserts one installment. The pool serves concurrent callers.
func (s *Store) CreateInstallment(ctx context.Context, inst *domain.Installment) (*domain.Installment, error) {
	id, err := parseID(inst.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(inst.ClientID)
	if err != nil {
		return nil, err
	}
	obligationID, err := parseOptionalID(inst.ObligationID)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO installments (
			id, obligation_id, client_id, installment_number, total_installments,
			due_date, original_due_date, status, amount, protocol, paid_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12)
		RETURNING ` + installmentColumns

	created, err := scanInstallment(s.db.QueryRow(ctx, query,
		id, obligationID, clientID, int32(inst.InstallmentNumber), int32(inst.TotalInstallments),
		dateToPgtype(inst.DueDate), datePtrToPgtype(inst.OriginalDueDate), string(inst.Status),
		inst.Amount.String(), textPtrToPgtype(inst.Protocol), timePtrToPgtype(inst.PaidAt), timeToPgtype(inst.CreatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert installment: %w", mapWriteError(err))
	}
	return created, nil
}

// UpdateInstallmentStatus sets status and paid_at.
func (s *Store) UpdateInstallmentStatus(ctx context.Context, id string, status domain.InstallmentStatus, paidAt *time.Time) (*domain.Installment, error) {
	instID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	updated, err := scanInstallment(s.db.QueryRow(ctx,
		"UPDATE installments SET status = $2, paid_at = $3 WHERE id = $1 RETURNING "+installmentColumns,
		instID, string(status), timePtrToPgtype(paidAt),
	))
	if err != nil {
		return nil, notFound(err, domain.ErrInstallmentNotFound, id)
	}
	return updated, nil
}
