// Package holidays loads holiday tables from embedded files, a directory or a
// GCS bucket and merges them into a calendar.Calendar.
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rezkam/fiscal/internal/calendar"
)

// Table is the JSON document format of a holiday table.
type Table struct {
	Jurisdiction string   `json:"jurisdiction"`
	Dates        []string `json:"dates"`
}

// Source yields holiday tables for any jurisdiction.
type Source interface {
	Tables(ctx context.Context) ([]Table, error)
}

// Load builds the calendar for jurisdiction from the built-in table plus every
// table in sources listing that jurisdiction.
func Load(ctx context.Context, jurisdiction calendar.Jurisdiction, sources ...Source) (*calendar.Calendar, error) {
	cal := calendar.NewDefault(jurisdiction)

	for _, src := range sources {
		tables, err := src.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load holiday tables: %w", err)
		}
		for _, t := range tables {
			if !strings.EqualFold(t.Jurisdiction, string(jurisdiction)) {
				continue
			}
			if err := cal.AddStrings(t.Dates...); err != nil {
				return nil, err
			}
		}
	}

	slog.InfoContext(ctx, "Holiday calendar loaded",
		"jurisdiction", jurisdiction,
		"holidays", cal.Len(),
		"horizon", cal.Horizon())

	return cal, nil
}

func decodeTable(name string, r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Table{}, fmt.Errorf("failed to decode holiday table %s: %w", name, err)
	}
	if t.Jurisdiction == "" {
		return Table{}, fmt.Errorf("holiday table %s: jurisdiction is required", name)
	}
	return t, nil
}
