package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
)

const occurrenceColumns = `id, client_id, kind, title, description, notes, responsible, amount,
	due_date, original_due_date, status, recurrence, weekend_policy, parent_id, auto_created,
	completed_at, paid_at, created_at, updated_at`

const sourcesClause = `recurrence <> 'none' AND ((kind = 'obligation' AND status = 'completed') OR (kind = 'tax' AND status = 'paid'))`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(row rowScanner) (*domain.Occurrence, error) {
	var (
		occ                              domain.Occurrence
		kind, status, recurrence, policy string
		amount, dueDate                  string
		createdAt, updatedAt             string
		originalDueDate, parentID        sql.NullString
		completedAt, paidAt              sql.NullString
	)

	err := row.Scan(
		&occ.ID, &occ.ClientID, &kind, &occ.Title, &occ.Description, &occ.Notes, &occ.Responsible, &amount,
		&dueDate, &originalDueDate, &status, &recurrence, &policy, &parentID, &occ.AutoCreated,
		&completedAt, &paidAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if occ.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	if occ.DueDate, err = domain.ParseDate(dueDate); err != nil {
		return nil, err
	}
	if occ.OriginalDueDate, err = parseDatePtr(originalDueDate); err != nil {
		return nil, err
	}
	if occ.CompletedAt, err = parseTimestampPtr(completedAt); err != nil {
		return nil, err
	}
	if occ.PaidAt, err = parseTimestampPtr(paidAt); err != nil {
		return nil, err
	}
	if occ.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if occ.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}

	occ.Kind = domain.Kind(kind)
	occ.Status = domain.Status(status)
	occ.Recurrence = domain.Recurrence(recurrence)
	occ.WeekendPolicy = domain.WeekendPolicy(policy)
	occ.ParentID = nullToStringPtr(parentID)

	return &occ, nil
}

func occurrenceWhere(filter domain.OccurrenceFilter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.ClientID != "" {
		if err := validateID(filter.ClientID); err != nil {
			return "", nil, err
		}
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(s))
		}
		clauses = append(clauses, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.SourcesOnly {
		clauses = append(clauses, sourcesClause)
	}
	if filter.DueFrom != nil {
		clauses = append(clauses, "due_date >= ?")
		args = append(args, domain.FormatDate(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		clauses = append(clauses, "due_date <= ?")
		args = append(args, domain.FormatDate(*filter.DueTo))
	}
	if filter.PeriodMonth != nil {
		clauses = append(clauses, "due_month = ?")
		args = append(args, domain.FormatDate(domain.MonthStart(*filter.PeriodMonth)))
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// FindOccurrences returns occurrences matching filter, ordered by due date.
func (s *Store) FindOccurrences(ctx context.Context, filter domain.OccurrenceFilter) ([]*domain.Occurrence, error) {
	where, args, err := occurrenceWhere(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, "SELECT "+occurrenceColumns+" FROM occurrences"+where+" ORDER BY due_date, created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []*domain.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		occurrences = append(occurrences, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate occurrences: %w", err)
	}

	return occurrences, nil
}

// FindOccurrenceByID retrieves a single occurrence.
func (s *Store) FindOccurrenceByID(ctx context.Context, id string) (*domain.Occurrence, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	occ, err := scanOccurrence(s.q.QueryRowContext(ctx, "SELECT "+occurrenceColumns+" FROM occurrences WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, domain.ErrOccurrenceNotFound, id)
	}
	return occ, nil
}

// CreateOccurrence inserts occ and reads it back.
func (s *Store) CreateOccurrence(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error) {
	if err := validateID(occ.ID); err != nil {
		return nil, err
	}
	if err := validateID(occ.ClientID); err != nil {
		return nil, err
	}
	parentID, err := optionalID(occ.ParentID)
	if err != nil {
		return nil, err
	}

	recurrence := occ.Recurrence
	if recurrence == "" {
		recurrence = domain.RecurrenceNone
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO occurrences (
			id, client_id, kind, title, normalized_title, description, notes, responsible, amount,
			due_date, due_month, original_due_date, status, recurrence, weekend_policy, parent_id,
			auto_created, completed_at, paid_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		occ.ID, occ.ClientID, string(occ.Kind), occ.Title, dedup.NormalizeTitle(occ.Title),
		occ.Description, occ.Notes, occ.Responsible, occ.Amount.String(),
		domain.FormatDate(occ.DueDate), domain.FormatDate(domain.MonthStart(occ.PeriodDate())), formatDatePtr(occ.OriginalDueDate),
		string(occ.Status), string(recurrence), string(occ.WeekendPolicy), parentID,
		occ.AutoCreated, formatTimestampPtr(occ.CompletedAt), formatTimestampPtr(occ.PaidAt),
		formatTimestamp(occ.CreatedAt), formatTimestamp(occ.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert occurrence: %w", mapWriteError(err, domain.ErrClientNotFound))
	}

	return s.FindOccurrenceByID(ctx, occ.ID)
}

// UpdateOccurrenceStatus sets status and stores fulfilledAt in the column matching the kind.
func (s *Store) UpdateOccurrenceStatus(ctx context.Context, id string, status domain.Status, fulfilledAt *time.Time) (*domain.Occurrence, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	at := formatTimestampPtr(fulfilledAt)
	res, err := s.q.ExecContext(ctx, `
		UPDATE occurrences SET
			status = ?,
			completed_at = CASE WHEN kind = 'obligation' THEN ? END,
			paid_at = CASE WHEN kind = 'tax' THEN ? END,
			updated_at = ?
		WHERE id = ?`,
		string(status), at, at, formatTimestamp(time.Now().UTC()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update occurrence: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrOccurrenceNotFound, id)
	}

	return s.FindOccurrenceByID(ctx, id)
}

// CreateHistoryEntry appends a recurrence history record.
func (s *Store) CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error {
	for _, id := range []string{entry.ID, entry.EntityID, entry.OriginalID} {
		if err := validateID(id); err != nil {
			return err
		}
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO recurrence_history (id, entity_type, entity_id, original_id, created_by_system, creation_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.EntityType), entry.EntityID, entry.OriginalID, entry.CreatedBySystem,
		domain.FormatDate(entry.CreationDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// FindHistory returns the history entries recorded for entityID in insertion order.
func (s *Store) FindHistory(ctx context.Context, entityID string) ([]*domain.HistoryEntry, error) {
	if err := validateID(entityID); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, original_id, created_by_system, creation_date
		FROM recurrence_history WHERE entity_id = ? ORDER BY rowid`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var (
			entry        domain.HistoryEntry
			entityType   string
			creationDate string
		)
		if err := rows.Scan(&entry.ID, &entityType, &entry.EntityID, &entry.OriginalID, &entry.CreatedBySystem, &creationDate); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.EntityType = domain.EntityType(entityType)
		if entry.CreationDate, err = domain.ParseDate(creationDate); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}
