package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rezkam/fiscal/internal/domain"
)

// timestampLayout is fixed-width so text ordering matches time ordering.
const timestampLayout = "2006-01-02 15:04:05.000000000"

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return nil
}

func optionalID(id *string) (sql.NullString, error) {
	if id == nil || *id == "" {
		return sql.NullString{}, nil
	}
	if err := validateID(*id); err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: *id, Valid: true}, nil
}

func nullToStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func stringPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimestampPtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseTimestampPtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTimestamp(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDatePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: domain.FormatDate(*t), Valid: true}
}

func parseDatePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := domain.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// encodeJSON stores slices in TEXT columns; nil encodes as an empty array.
func encodeJSON[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON[T any](s string) ([]T, error) {
	var values []T
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, err
	}
	return values, nil
}
