package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  DAS - Simples Nacional  ")
	require.NoError(t, err)
	assert.Equal(t, "DAS - Simples Nacional", title.String())

	_, err = NewTitle("   ")
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewTitle(strings.Repeat("á", 256))
	assert.ErrorIs(t, err, ErrTitleTooLong)

	_, err = NewTitle(strings.Repeat("á", 255))
	assert.NoError(t, err)
}

func TestNewWeekendPolicy_FoldsLegacyNames(t *testing.T) {
	tests := []struct {
		input string
		want  WeekendPolicy
	}{
		{"", ""},
		{"advance", WeekendAdvance},
		{"anticipate", WeekendAdvance},
		{"ADVANCE", WeekendAdvance},
		{"postpone", WeekendPostpone},
		{"next_business_day", WeekendPostpone},
		{"keep", WeekendKeep},
		{" Keep ", WeekendKeep},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewWeekendPolicy(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewWeekendPolicy("sometimes")
	assert.ErrorIs(t, err, ErrInvalidWeekendPolicy)
}

func TestWeekendPolicy_Or(t *testing.T) {
	assert.Equal(t, WeekendAdvance, WeekendPolicy("").Or(WeekendAdvance))
	assert.Equal(t, WeekendKeep, WeekendKeep.Or(WeekendAdvance))
}

func TestNewRecurrence(t *testing.T) {
	r, err := NewRecurrence("")
	require.NoError(t, err)
	assert.Equal(t, RecurrenceNone, r)
	assert.False(t, r.Recurs())

	r, err = NewRecurrence("Quarterly")
	require.NoError(t, err)
	assert.Equal(t, RecurrenceQuarterly, r)
	assert.True(t, r.Recurs())

	_, err = NewRecurrence("weekly")
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestNewStatus_DependsOnKind(t *testing.T) {
	s, err := NewStatus(KindObligation, "completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = NewStatus(KindObligation, "paid")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	s, err = NewStatus(KindTax, "paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)

	_, err = NewStatus(KindTax, "completed")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	s, err = NewStatus(KindTax, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	_, err = NewStatus(KindTax, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewBusinessActivity(t *testing.T) {
	a, err := NewBusinessActivity("comercio_servico")
	require.NoError(t, err)
	assert.Equal(t, ActivityBoth, a)

	a, err = NewBusinessActivity("")
	require.NoError(t, err)
	assert.Empty(t, a)

	_, err = NewBusinessActivity("industry")
	assert.ErrorIs(t, err, ErrInvalidActivity)
}

func TestOccurrence_IsRecurrenceSource(t *testing.T) {
	tests := []struct {
		name string
		occ  Occurrence
		want bool
	}{
		{"completed monthly obligation", Occurrence{Kind: KindObligation, Status: StatusCompleted, Recurrence: RecurrenceMonthly}, true},
		{"paid annual tax", Occurrence{Kind: KindTax, Status: StatusPaid, Recurrence: RecurrenceAnnual}, true},
		{"overdue obligation", Occurrence{Kind: KindObligation, Status: StatusOverdue, Recurrence: RecurrenceMonthly}, false},
		{"completed one-off", Occurrence{Kind: KindObligation, Status: StatusCompleted, Recurrence: RecurrenceNone}, false},
		{"pending tax", Occurrence{Kind: KindTax, Status: StatusPending, Recurrence: RecurrenceMonthly}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.occ.IsRecurrenceSource())
		})
	}
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(NewDate(2024, time.February, 17))
	assert.Equal(t, NewDate(2024, time.February, 1), first)
	assert.Equal(t, NewDate(2024, time.February, 29), last)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.November, 1), d)
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("01/11/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
