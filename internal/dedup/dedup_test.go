package dedup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/ptr"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "das - simples nacional", NormalizeTitle("  DAS   -  Simples\tNacional "))
	// "é" precomposed vs "e" + combining acute accent.
	assert.Equal(t, NormalizeTitle("D\u00e9bito"), NormalizeTitle("De\u0301bito"))
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"ICMS", "icms", true},
		{"ICMS", "ICMS ST", true},
		{"ISS", "ISS Retido", false},
		{"DCTFWeb", "DCTF", true},
		{"PIS", "COFINS", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Similar(tt.a, tt.b, MinTitleSimilarityLength))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678000190", DigitsOnly("12.345.678/0001-90"))
	assert.Empty(t, DigitsOnly("n/a"))
}

func existingDAS() []*domain.Occurrence {
	return []*domain.Occurrence{{
		ID:         "occ-1",
		ClientID:   "client-1",
		Kind:       domain.KindTax,
		Title:      "DAS - Simples Nacional",
		DueDate:    domain.NewDate(2025, time.October, 20),
		Status:     domain.StatusPending,
		Recurrence: domain.RecurrenceMonthly,
	}}
}

func TestCheckOccurrence_ExactIgnoresCaseAndWhitespace(t *testing.T) {
	res := CheckOccurrence(Candidate{
		ClientID:   "client-1",
		Title:      "das - simples nacional ",
		Kind:       domain.KindTax,
		DueDate:    domain.NewDate(2025, time.October, 5),
		Recurrence: domain.RecurrenceMonthly,
	}, existingDAS())

	assert.Equal(t, LevelExact, res.Level)
	assert.True(t, res.Blocking())
	assert.True(t, res.IsDuplicate())
	require.NotNil(t, res.Match)
	assert.Equal(t, "occ-1", res.Match.ID)
	assert.Contains(t, res.Message, "10/2025")
}

func TestCheckOccurrence_ScopedToClient(t *testing.T) {
	res := CheckOccurrence(Candidate{
		ClientID: "client-2",
		Title:    "das - simples nacional ",
		Kind:     domain.KindTax,
		DueDate:  domain.NewDate(2025, time.October, 5),
	}, existingDAS())

	assert.Equal(t, LevelNone, res.Level)
	assert.False(t, res.IsDuplicate())
	assert.Nil(t, res.Match)
}

func TestCheckOccurrence_ScopedToMonth(t *testing.T) {
	res := CheckOccurrence(Candidate{
		ClientID: "client-1",
		Title:    "DAS - Simples Nacional",
		Kind:     domain.KindTax,
		DueDate:  domain.NewDate(2025, time.November, 20),
	}, existingDAS())

	assert.Equal(t, LevelNone, res.Level)

	res = CheckOccurrence(Candidate{
		ClientID: "client-1",
		Title:    "DAS - Simples Nacional",
		Kind:     domain.KindTax,
		DueDate:  domain.NewDate(2024, time.October, 20),
	}, existingDAS())

	assert.Equal(t, LevelNone, res.Level, "same month of another year")
}

func TestCheckOccurrence_ScopedToUnadjustedMonth(t *testing.T) {
	// Due 2025-11-01 (Saturday) advanced into October.
	res := CheckOccurrence(Candidate{
		ClientID: "client-1",
		Title:    "DAS - Simples Nacional",
		Kind:     domain.KindTax,
		DueDate:  domain.NewDate(2025, time.October, 31),
		Period:   domain.NewDate(2025, time.November, 1),
	}, existingDAS())
	assert.Equal(t, LevelNone, res.Level)

	shifted := &domain.Occurrence{
		ID:              "occ-2",
		ClientID:        "client-1",
		Kind:            domain.KindTax,
		Title:           "DAS - Simples Nacional",
		DueDate:         domain.NewDate(2025, time.December, 1),
		OriginalDueDate: ptr.To(domain.NewDate(2025, time.November, 30)),
	}
	res = CheckOccurrence(Candidate{
		ClientID: "client-1",
		Title:    "DAS - Simples Nacional",
		Kind:     domain.KindTax,
		DueDate:  domain.NewDate(2025, time.December, 30),
	}, []*domain.Occurrence{shifted})
	assert.Equal(t, LevelNone, res.Level)

	res = CheckOccurrence(CandidateFrom(shifted), existingDAS())
	assert.Equal(t, LevelNone, res.Level, "november period does not match october")
}

func TestCheckOccurrence_Probable(t *testing.T) {
	tests := []struct {
		name  string
		title string
		kind  domain.Kind
	}{
		{"containment", "DAS - Simples Nacional (retificação)", domain.KindTax},
		{"same title other kind", "DAS - Simples Nacional", domain.KindObligation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckOccurrence(Candidate{
				ClientID: "client-1",
				Title:    tt.title,
				Kind:     tt.kind,
				DueDate:  domain.NewDate(2025, time.October, 28),
			}, existingDAS())

			assert.Equal(t, LevelProbable, res.Level)
			assert.True(t, res.NeedsConfirmation())
			assert.False(t, res.Blocking())
			assert.Contains(t, res.Message, "20/10/2025")
		})
	}
}

func TestCheckOccurrence_ShortTitlesAreNotSimilar(t *testing.T) {
	existing := []*domain.Occurrence{{
		ClientID: "client-1", Kind: domain.KindTax, Title: "ISS", DueDate: domain.NewDate(2025, time.October, 10),
	}}

	res := CheckOccurrence(Candidate{
		ClientID: "client-1", Kind: domain.KindTax, Title: "ISS Retido", DueDate: domain.NewDate(2025, time.October, 15),
	}, existing)

	assert.Equal(t, LevelNone, res.Level)
}

// A differing recurrence on an identical title is already caught by the
// earlier tiers: exact when the kind matches, probable otherwise.
func TestCheckOccurrence_RecurrenceTierIsShadowed(t *testing.T) {
	base := Candidate{
		ClientID:   "client-1",
		Title:      "DAS - Simples Nacional",
		DueDate:    domain.NewDate(2025, time.October, 20),
		Recurrence: domain.RecurrenceQuarterly,
	}

	sameKind := base
	sameKind.Kind = domain.KindTax
	assert.Equal(t, LevelExact, CheckOccurrence(sameKind, existingDAS()).Level)

	otherKind := base
	otherKind.Kind = domain.KindObligation
	assert.Equal(t, LevelProbable, CheckOccurrence(otherKind, existingDAS()).Level)
}

func TestCheckOccurrence_EmptyExisting(t *testing.T) {
	res := CheckOccurrence(Candidate{ClientID: "c", Title: "x", DueDate: domain.NewDate(2025, 1, 1)}, nil)
	assert.Equal(t, LevelNone, res.Level)
}

func TestCheckInstallment(t *testing.T) {
	existing := []*domain.Installment{
		{ID: "i-1", ClientID: "client-1", InstallmentNumber: 1, DueDate: domain.NewDate(2025, time.March, 5), Protocol: ptr.To("PGFN-123 ")},
		{ID: "i-2", ClientID: "client-2", InstallmentNumber: 2, DueDate: domain.NewDate(2025, time.April, 1)},
	}

	tests := []struct {
		name string
		c    InstallmentCandidate
		want Level
	}{
		{"exact", InstallmentCandidate{ClientID: "client-1", InstallmentNumber: 1, DueDate: domain.NewDate(2025, time.March, 5)}, LevelExact},
		{"same number other date", InstallmentCandidate{ClientID: "client-1", InstallmentNumber: 1, DueDate: domain.NewDate(2025, time.March, 6)}, LevelNone},
		{"protocol ignores case", InstallmentCandidate{ClientID: "client-1", InstallmentNumber: 7, DueDate: domain.NewDate(2026, 1, 1), Protocol: " pgfn-123"}, LevelProtocol},
		{"protocol other client", InstallmentCandidate{ClientID: "client-2", InstallmentNumber: 7, DueDate: domain.NewDate(2026, 1, 1), Protocol: "PGFN-123"}, LevelNone},
		{"blank protocol", InstallmentCandidate{ClientID: "client-2", InstallmentNumber: 9, DueDate: domain.NewDate(2026, 1, 1), Protocol: "  "}, LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckInstallment(tt.c, existing)
			assert.Equal(t, tt.want, res.Level)
			assert.Equal(t, tt.want != LevelNone, res.IsDuplicate())
		})
	}
}

func TestCheckClient(t *testing.T) {
	existing := []*domain.Client{
		{ID: "c-1", Name: "Padaria Pão Quente Ltda", CNPJ: "12.345.678/0001-90"},
		{ID: "c-2", Name: "Sem CNPJ", CNPJ: ""},
	}

	res := CheckClient("Outro Nome", "12345678000190", existing)
	assert.Equal(t, LevelCNPJ, res.Level)
	assert.True(t, res.Blocking())
	assert.Equal(t, "c-1", res.Match.ID)

	res = CheckClient("padaria pão quente", "99.999.999/0001-99", existing)
	assert.Equal(t, LevelName, res.Level)
	assert.False(t, res.Blocking())

	res = CheckClient("Novo Cliente", "", existing)
	assert.Equal(t, LevelNone, res.Level, "empty CNPJ must not match another empty CNPJ")

	res = CheckClient("Pão", "11.111.111/0001-11", existing)
	assert.Equal(t, LevelNone, res.Level)
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Err: domain.ErrDuplicateOccurrence, Level: LevelExact, Message: "exists"}

	assert.ErrorIs(t, err, domain.ErrDuplicateOccurrence)

	var conflict *ConflictError
	require.True(t, errors.As(error(err), &conflict))
	assert.Equal(t, LevelExact, conflict.Level)
}
