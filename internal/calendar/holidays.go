// Package calendar answers business-day questions for due-date scheduling:
// which dates are holidays, which are non-business days, and where a due date
// moves under a weekend policy.
package calendar

import (
	"fmt"
	"sync"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Jurisdiction identifies a holiday table, e.g. "BR".
type Jurisdiction string

// Brazil is the default jurisdiction.
const Brazil Jurisdiction = "BR"

// Calendar is a lookup table of holiday dates for one jurisdiction.
// There is no rule-based computation: dates outside the table are never holidays,
// so the table must be extended every year. Horizon reports how far it reaches.
//
// A Calendar is safe for concurrent use; loaders may Add dates while the scheduler reads.
type Calendar struct {
	jurisdiction Jurisdiction

	mu       sync.RWMutex
	holidays map[string]struct{}
	horizon  int
}

// New creates a Calendar for the jurisdiction seeded with the given dates.
func New(jurisdiction Jurisdiction, dates ...time.Time) *Calendar {
	c := &Calendar{
		jurisdiction: jurisdiction,
		holidays:     make(map[string]struct{}, len(dates)),
	}
	c.Add(dates...)
	return c
}

// NewDefault creates a Calendar seeded with the built-in table for the jurisdiction.
// Unknown jurisdictions get an empty table.
func NewDefault(jurisdiction Jurisdiction) *Calendar {
	c := New(jurisdiction)
	if table, ok := builtin[jurisdiction]; ok {
		// Built-in tables are validated by tests.
		_ = c.AddStrings(table...)
	}
	return c
}

// Jurisdiction returns the jurisdiction this calendar covers.
func (c *Calendar) Jurisdiction() Jurisdiction {
	return c.jurisdiction
}

// Add registers holiday dates. Time-of-day is ignored.
func (c *Calendar) Add(dates ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range dates {
		d = domain.Date(d)
		c.holidays[domain.FormatDate(d)] = struct{}{}
		if d.Year() > c.horizon {
			c.horizon = d.Year()
		}
	}
}

// AddStrings registers holiday dates given as YYYY-MM-DD.
// Nothing is added if any entry fails to parse.
func (c *Calendar) AddStrings(dates ...string) error {
	parsed := make([]time.Time, 0, len(dates))
	for _, s := range dates {
		d, err := domain.ParseDate(s)
		if err != nil {
			return fmt.Errorf("holiday table %s: %w", c.jurisdiction, err)
		}
		parsed = append(parsed, d)
	}
	c.Add(parsed...)
	return nil
}

// IsHoliday reports whether the calendar date of t is a listed holiday.
func (c *Calendar) IsHoliday(t time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.holidays[domain.FormatDate(domain.Date(t))]
	return ok
}

// Horizon returns the last year with at least one listed holiday, or 0 for an empty table.
func (c *Calendar) Horizon() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.horizon
}

// Covers reports whether t falls within the table's horizon.
func (c *Calendar) Covers(t time.Time) bool {
	return t.Year() <= c.Horizon()
}

// Len returns the number of listed holidays.
func (c *Calendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.holidays)
}

// builtin holds national holidays, fixed and movable, as explicit dates.
var builtin = map[Jurisdiction][]string{
	Brazil: {
		// 2025
		"2025-01-01", // Confraternização Universal
		"2025-03-03", // Carnaval
		"2025-03-04", // Carnaval
		"2025-04-18", // Sexta-feira Santa
		"2025-04-20", // Páscoa
		"2025-04-21", // Tiradentes
		"2025-05-01", // Dia do Trabalho
		"2025-06-19", // Corpus Christi
		"2025-09-07", // Independência
		"2025-10-12", // Nossa Senhora Aparecida
		"2025-11-02", // Finados
		"2025-11-15", // Proclamação da República
		"2025-11-20", // Consciência Negra
		"2025-12-25", // Natal

		// 2026
		"2026-01-01",
		"2026-02-16",
		"2026-02-17",
		"2026-04-03",
		"2026-04-05",
		"2026-04-21",
		"2026-05-01",
		"2026-06-04",
		"2026-09-07",
		"2026-10-12",
		"2026-11-02",
		"2026-11-15",
		"2026-11-20",
		"2026-12-25",
	},
}
