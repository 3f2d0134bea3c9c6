package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rezkam/fiscal/internal/domain"
)

// === pgtype Conversion Helpers ===

// parseID parses a domain ID into pgtype.UUID.
func parseID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// parseOptionalID parses a nullable domain ID; nil maps to NULL.
func parseOptionalID(id *string) (pgtype.UUID, error) {
	if id == nil || *id == "" {
		return pgtype.UUID{}, nil
	}
	return parseID(*id)
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// pgtypeToUUIDPtr converts pgtype.UUID to *string (nil if invalid).
func pgtypeToUUIDPtr(id pgtype.UUID) *string {
	if !id.Valid {
		return nil
	}
	s := uuid.UUID(id.Bytes).String()
	return &s
}

// timeToPgtype converts time.Time to pgtype.Timestamptz.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time (nil if invalid).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utcTime := t.Time.UTC()
	return &utcTime
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz; nil stores NULL.
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// dateToPgtype converts time.Time to pgtype.Date.
func dateToPgtype(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.Date(t), Valid: true}
}

// datePtrToPgtype converts *time.Time to pgtype.Date; nil stores NULL.
func datePtrToPgtype(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return dateToPgtype(*t)
}

// pgtypeToDate converts pgtype.Date to time.Time (zero if invalid).
func pgtypeToDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.Date(d.Time)
}

// pgtypeToDatePtr converts pgtype.Date to *time.Time (nil if invalid).
func pgtypeToDatePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := domain.Date(d.Time)
	return &t
}

// parseAmount reads a numeric column selected as text.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// textPtrToPgtype converts *string to pgtype.Text; nil stores NULL.
func textPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// pgtypeToTextPtr converts pgtype.Text to *string (nil if invalid).
func pgtypeToTextPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// statusesToStrings converts domain statuses for ANY($n) filters.
func statusesToStrings(statuses []domain.Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

// activitiesToStrings converts business activities for text[] columns.
func activitiesToStrings(activities []domain.BusinessActivity) []string {
	result := make([]string, len(activities))
	for i, a := range activities {
		result[i] = string(a)
	}
	return result
}

// stringsToActivities converts a text[] column back to business activities.
func stringsToActivities(values []string) []domain.BusinessActivity {
	result := make([]domain.BusinessActivity, len(values))
	for i, v := range values {
		result[i] = domain.BusinessActivity(v)
	}
	return result
}
