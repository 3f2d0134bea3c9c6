package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
)

const occurrenceColumns = `id, client_id, kind, title, description, notes, responsible, amount::text,
	due_date, original_due_date, status, recurrence, weekend_policy, parent_id, auto_created,
	completed_at, paid_at, created_at, updated_at`

// sourcesClause selects fulfilled recurring occurrences.
const sourcesClause = `recurrence <> 'none' AND ((kind = 'obligation' AND status = 'completed') OR (kind = 'tax' AND status = 'paid'))`

func scanOccurrence(row pgx.Row) (*domain.Occurrence, error) {
	var (
		occ                              domain.Occurrence
		id, clientID, parentID           pgtype.UUID
		kind, status, recurrence, policy string
		amount                           string
		dueDate, originalDueDate         pgtype.Date
		completedAt, paidAt              pgtype.Timestamptz
		createdAt, updatedAt             pgtype.Timestamptz
	)

	err := row.Scan(
		&id, &clientID, &kind, &occ.Title, &occ.Description, &occ.Notes, &occ.Responsible, &amount,
		&dueDate, &originalDueDate, &status, &recurrence, &policy, &parentID, &occ.AutoCreated,
		&completedAt, &paidAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	occ.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}

	occ.ID = pgtypeToUUIDString(id)
	occ.ClientID = pgtypeToUUIDString(clientID)
	occ.Kind = domain.Kind(kind)
	occ.Status = domain.Status(status)
	occ.Recurrence = domain.Recurrence(recurrence)
	occ.WeekendPolicy = domain.WeekendPolicy(policy)
	occ.DueDate = pgtypeToDate(dueDate)
	occ.OriginalDueDate = pgtypeToDatePtr(originalDueDate)
	occ.ParentID = pgtypeToUUIDPtr(parentID)
	occ.CompletedAt = pgtypeToTimePtr(completedAt)
	occ.PaidAt = pgtypeToTimePtr(paidAt)
	occ.CreatedAt = pgtypeToTime(createdAt)
	occ.UpdatedAt = pgtypeToTime(updatedAt)

	return &occ, nil
}

// occurrenceWhere builds the WHERE clause for filter. Zero-valued fields add nothing.
func occurrenceWhere(filter domain.OccurrenceFilter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.ClientID != "" {
		id, err := parseID(filter.ClientID)
		if err != nil {
			return "", nil, err
		}
		add("client_id = $%d", id)
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", statusesToStrings(filter.Statuses))
	}
	if filter.SourcesOnly {
		clauses = append(clauses, sourcesClause)
	}
	if filter.DueFrom != nil {
		add("due_date >= $%d", dateToPgtype(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		add("due_date <= $%d", dateToPgtype(*filter.DueTo))
	}
	if filter.PeriodMonth != nil {
		add("due_month = $%d", dateToPgtype(domain.MonthStart(*filter.PeriodMonth)))
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

	rows, err := s.db.Query(ctx, "SELECT "+occurrenceColumns+" FROM occurrences"+where+" ORDER BY due_date, created_at", args...)
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
	occID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	occ, err := scanOccurrence(s.db.QueryRow(ctx, "SELECT "+occurrenceColumns+" FROM occurrences WHERE id = $1", occID))
	if err != nil {
		return nil, notFound(err, domain.ErrOccurrenceNotFound, id)
	}
	return occ, nil
}

// CreateOccurrence inserts occ. The normalized title and due month feed the
// uniqueness constraint.
func (s *Store) CreateOccurrence(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error) {
	id, err := parseID(occ.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(occ.ClientID)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalID(occ.ParentID)
	if err != nil {
		return nil, err
	}

	recurrence := occ.Recurrence
	if recurrence == "" {
		recurrence = domain.RecurrenceNone
	}

	const query = `
		INSERT INTO occurrences (
			id, client_id, kind, title, normalized_title, description, notes, responsible, amount,
			due_date, due_month, original_due_date, status, recurrence, weekend_policy, parent_id,
			auto_created, completed_at, paid_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + occurrenceColumns

	created, err := scanOccurrence(s.db.QueryRow(ctx, query,
		id, clientID, string(occ.Kind), occ.Title, dedup.NormalizeTitle(occ.Title),
		occ.Description, occ.Notes, occ.Responsible, occ.Amount.String(),
		dateToPgtype(occ.DueDate), dateToPgtype(domain.MonthStart(occ.PeriodDate())), datePtrToPgtype(occ.OriginalDueDate),
		string(occ.Status), string(recurrence), string(occ.WeekendPolicy), parentID,
		occ.AutoCreated, timePtrToPgtype(occ.CompletedAt), timePtrToPgtype(occ.PaidAt),
		timeToPgtype(occ.CreatedAt), timeToPgtype(occ.UpdatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert occurrence: %w", mapWriteError(err))
	}
	return created, nil
}

// UpdateOccurrenceStatus sets status and stores fulfilledAt in the column matching the kind.
func (s *Store) UpdateOccurrenceStatus(ctx context.Context, id string, status domain.Status, fulfilledAt *time.Time) (*domain.Occurrence, error) {
	occID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	const query = `
		UPDATE occurrences SET
			status = $2,
			completed_at = CASE WHEN kind = 'obligation' THEN $3::timestamptz END,
			paid_at = CASE WHEN kind = 'tax' THEN $3::timestamptz END,
			updated_at = $4
		WHERE id = $1
		RETURNING ` + occurrenceColumns

	updated, err := scanOccurrence(s.db.QueryRow(ctx, query, occID, string(status), timePtrToPgtype(fulfilledAt), timeToPgtype(time.Now().UTC())))
	if err != nil {
		return nil, notFound(err, domain.ErrOccurrenceNotFound, id)
	}
	return updated, nil
}

// CreateHistoryEntry appends a recurrence history record.
func (s *Store) CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error {
	id, err := parseID(entry.ID)
	if err != nil {
		return err
	}
	entityID, err := parseID(entry.EntityID)
	if err != nil {
		return err
	}
	originalID, err := parseID(entry.OriginalID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO recurrence_history (id, entity_type, entity_id, original_id, created_by_system, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, string(entry.EntityType), entityID, originalID, entry.CreatedBySystem, dateToPgtype(entry.CreationDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// FindHistory returns the history entries recorded for entityID.
func (s *Store) FindHistory(ctx context.Context, entityID string) ([]*domain.HistoryEntry, error) {
	id, err := parseID(entityID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, entity_type, entity_id, original_id, created_by_system, creation_date
		FROM recurrence_history WHERE entity_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var (
			entry         domain.HistoryEntry
			hID, eID, oID pgtype.UUID
			entityType    string
			creationDate  pgtype.Date
		)
		if err := rows.Scan(&hID, &entityType, &eID, &oID, &entry.CreatedBySystem, &creationDate); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.ID = pgtypeToUUIDString(hID)
		entry.EntityType = domain.EntityType(entityType)
		entry.EntityID = pgtypeToUUIDString(eID)
		entry.OriginalID = pgtypeToUUIDString(oID)
		entry.CreationDate = pgtypeToDate(creationDate)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}
