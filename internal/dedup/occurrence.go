package dedup

import (
	"fmt"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// Level is the severity of a potential duplicate.
type Level string

const (
	LevelNone Level = "none"

	// LevelExact blocks creation.
	LevelExact Level = "exact"

	// LevelProbable needs explicit confirmation.
	LevelProbable Level = "probable"

	// LevelRecurrence warns only.
	LevelRecurrence Level = "recurrence"
)

// Candidate is an occurrence about to be created.
type Candidate struct {
	ClientID   string
	Title      string
	Kind       domain.Kind
	DueDate    time.Time
	Recurrence domain.Recurrence

	// Period is the unadjusted date that scopes the check to a month.
	// Zero means DueDate.
	Period time.Time
}

func (c Candidate) period() time.Time {
	if c.Period.IsZero() {
		return c.DueDate
	}
	return c.Period
}

// CandidateFrom builds a Candidate from an occurrence.
func CandidateFrom(o *domain.Occurrence) Candidate {
	return Candidate{
		ClientID:   o.ClientID,
		Title:      o.Title,
		Kind:       o.Kind,
		DueDate:    o.DueDate,
		Recurrence: o.Recurrence,
		Period:     o.PeriodDate(),
	}
}

// Result is the outcome of a duplication check.
type Result struct {
	Level   Level
	Match   *domain.Occurrence
	Message string
}

// IsDuplicate reports whether any tier matched.
func (r Result) IsDuplicate() bool {
	return r.Level != "" && r.Level != LevelNone
}

// Blocking reports whether creation must not proceed.
func (r Result) Blocking() bool {
	return r.Level == LevelExact
}

// NeedsConfirmation reports whether creation may proceed only after the user confirms.
func (r Result) NeedsConfirmation() bool {
	return r.Level == LevelProbable
}

// CheckOccurrence classifies a candidate against existing occurrences. Only
// occurrences of the candidate's client are considered. Tiers are evaluated in order:
//
//  1. exact: same normalized title, same kind, same period month
//  2. probable: similar title, same period month
//  3. recurrence: same normalized title and month, both recurring with different cadences
//
// The first tier that matches wins.
func CheckOccurrence(c Candidate, existing []*domain.Occurrence) Result {
	title := NormalizeTitle(c.Title)
	period := c.period()

	scoped := make([]*domain.Occurrence, 0, len(existing))
	for _, o := range existing {
		if o.ClientID == c.ClientID && domain.SameMonth(o.PeriodDate(), period) {
			scoped = append(scoped, o)
		}
	}

	for _, o := range scoped {
		if NormalizeTitle(o.Title) == title && o.Kind == c.Kind {
			return Result{
				Level:   LevelExact,
				Match:   o,
				Message: fmt.Sprintf("%q already exists for this client in %02d/%d", o.Title, period.Month(), period.Year()),
			}
		}
	}

	for _, o := range scoped {
		if Similar(o.Title, c.Title, MinTitleSimilarityLength) {
			return Result{
				Level:   LevelProbable,
				Match:   o,
				Message: fmt.Sprintf("similar occurrence found: %q due %s; confirm to create anyway", o.Title, o.DueDate.Format("02/01/2006")),
			}
		}
	}

	if c.Recurrence.Recurs() {
		for _, o := range scoped {
			if NormalizeTitle(o.Title) == title && o.Recurrence.Recurs() && o.Recurrence != c.Recurrence {
				return Result{
					Level:   LevelRecurrence,
					Match:   o,
					Message: fmt.Sprintf("%q already exists with %s recurrence; creating with %s", o.Title, o.Recurrence, c.Recurrence),
				}
			}
		}
	}

	return Result{Level: LevelNone}
}
