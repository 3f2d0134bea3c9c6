package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/calendar"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/ptr"
)

func newTestGenerator() *Generator {
	return NewGenerator(calendar.NewResolver(calendar.NewDefault(calendar.Brazil)), "")
}

func completedMonthly(due time.Time) *domain.Occurrence {
	return &domain.Occurrence{
		ID:            "source-1",
		ClientID:      "client-1",
		Kind:          domain.KindObligation,
		Title:         "DAS - Simples Nacional",
		Description:   "monthly guide",
		Notes:         "send by email",
		Responsible:   "Ana",
		Amount:        decimal.RequireFromString("1234.56"),
		DueDate:       due,
		Status:        domain.StatusCompleted,
		Recurrence:    domain.RecurrenceMonthly,
		WeekendPolicy: domain.WeekendPostpone,
		CompletedAt:   ptr.To(due),
	}
}

func TestGenerator_Successor_CopiesSourceAndSetsLineage(t *testing.T) {
	g := newTestGenerator()
	source := completedMonthly(domain.NewDate(2025, time.January, 20))

	next, err := g.Successor(source, domain.NewDate(2025, time.February, 1))
	require.NoError(t, err)

	assert.NotEmpty(t, next.ID)
	assert.NotEqual(t, source.ID, next.ID)
	assert.Equal(t, domain.NewDate(2025, time.February, 20), next.DueDate)
	assert.Nil(t, next.OriginalDueDate)
	assert.Equal(t, domain.StatusPending, next.Status)
	assert.True(t, next.AutoCreated)
	require.NotNil(t, next.ParentID)
	assert.Equal(t, source.ID, *next.ParentID)
	assert.Nil(t, next.CompletedAt)
	assert.Nil(t, next.PaidAt)

	assert.Equal(t, source.ClientID, next.ClientID)
	assert.Equal(t, source.Kind, next.Kind)
	assert.Equal(t, source.Title, next.Title)
	assert.Equal(t, source.Description, next.Description)
	assert.Equal(t, source.Notes, next.Notes)
	assert.Equal(t, source.Responsible, next.Responsible)
	assert.True(t, source.Amount.Equal(next.Amount))
	assert.Equal(t, source.Recurrence, next.Recurrence)
	assert.Equal(t, source.WeekendPolicy, next.WeekendPolicy)
}

func TestGenerator_Successor_ClampsThenAdjusts(t *testing.T) {
	g := newTestGenerator()

	next, err := g.Successor(completedMonthly(domain.NewDate(2025, time.May, 31)), domain.NewDate(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2025, time.June, 30), next.DueDate)
	assert.Nil(t, next.OriginalDueDate)

	next, err = g.Successor(completedMonthly(domain.NewDate(2025, time.October, 1)), domain.NewDate(2025, time.November, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2025, time.November, 3), next.DueDate)
	require.NotNil(t, next.OriginalDueDate)
	assert.Equal(t, domain.NewDate(2025, time.November, 1), *next.OriginalDueDate)
}

func TestGenerator_Successor_UsesDefaultPolicy(t *testing.T) {
	g := NewGenerator(calendar.NewResolver(calendar.NewDefault(calendar.Brazil)), domain.WeekendAdvance)
	source := completedMonthly(domain.NewDate(2025, time.October, 1))
	source.WeekendPolicy = ""

	next, err := g.Successor(source, domain.NewDate(2025, time.November, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2025, time.October, 31), next.DueDate)
	assert.Empty(t, next.WeekendPolicy, "the successor inherits the unset policy")
}

func TestGenerator_Installments(t *testing.T) {
	g := newTestGenerator()

	installments, err := g.Installments(InstallmentPlan{
		ClientID: "client-1",
		Total:    3,
		Anchor:   domain.NewDate(2025, time.March, 1),
		Amount:   decimal.NewFromInt(500),
		Protocol: ptr.To("PGFN-123"),
		Policy:   domain.WeekendPostpone,
	})
	require.NoError(t, err)
	require.Len(t, installments, 3)

	want := []struct {
		due      time.Time
		original *time.Time
	}{
		{domain.NewDate(2025, time.March, 5), ptr.To(domain.NewDate(2025, time.March, 1))},
		{domain.NewDate(2025, time.April, 1), nil},
		{domain.NewDate(2025, time.May, 2), ptr.To(domain.NewDate(2025, time.May, 1))},
	}
	for i, inst := range installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, 3, inst.TotalInstallments)
		assert.LessOrEqual(t, inst.InstallmentNumber, inst.TotalInstallments)
		assert.Equal(t, domain.InstallmentPending, inst.Status)
		assert.Equal(t, want[i].due, inst.DueDate)
		assert.Equal(t, want[i].original, inst.OriginalDueDate)
	}
}

func TestGenerator_Installments_ClampsEachMonth(t *testing.T) {
	g := newTestGenerator()

	installments, err := g.Installments(InstallmentPlan{ClientID: "c", Total: 3, Anchor: domain.NewDate(2025, time.January, 31), Policy: domain.WeekendKeep})
	require.NoError(t, err)

	assert.Equal(t, domain.NewDate(2025, time.January, 31), installments[0].DueDate)
	assert.Equal(t, domain.NewDate(2025, time.February, 28), installments[1].DueDate)
	assert.Equal(t, domain.NewDate(2025, time.March, 31), installments[2].DueDate)
}

func TestGenerator_Installments_RejectsEmptyPlan(t *testing.T) {
	_, err := newTestGenerator().Installments(InstallmentPlan{ClientID: "c", Total: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInstallmentCount)
}

func TestGenerator_FromTemplates(t *testing.T) {
	g := newTestGenerator()
	client := &domain.Client{ID: "client-9", TaxRegime: "simples_nacional", BusinessActivity: domain.ActivityService}

	templates := []*domain.Template{
		{
			Name:       "Simples",
			TaxRegimes: []string{"simples_nacional"},
			Items: []domain.TemplateItem{
				{Title: "DAS", Kind: domain.KindTax, Recurrence: domain.RecurrenceMonthly, DayOfMonth: 20, WeekendRule: domain.WeekendPostpone},
			},
		},
		{Name: "Presumido", TaxRegimes: []string{"lucro_presumido"}, Kind: domain.KindTax, DayOfMonth: 15},
		{Name: "ICMS", TaxRegimes: []string{"simples_nacional"}, BusinessActivities: []domain.BusinessActivity{domain.ActivityCommerce}, DayOfMonth: 15},
		{
			Name:               "DEFIS",
			TaxRegimes:         []string{"simples_nacional"},
			BusinessActivities: []domain.BusinessActivity{domain.ActivityBoth},
			Kind:               domain.KindObligation,
			Recurrence:         domain.RecurrenceAnnual,
			DayOfMonth:         31,
		},
	}

	occurrences, err := g.FromTemplates(client, templates, domain.NewDate(2025, time.October, 21))
	require.NoError(t, err)
	require.Len(t, occurrences, 2)

	das := occurrences[0]
	assert.Equal(t, "DAS", das.Title)
	assert.Equal(t, domain.KindTax, das.Kind)
	assert.Equal(t, "client-9", das.ClientID)
	assert.Equal(t, domain.NewDate(2025, time.November, 21), das.DueDate, "20th passed, next month's 20th is a holiday")
	require.NotNil(t, das.OriginalDueDate)
	assert.Equal(t, domain.NewDate(2025, time.November, 20), *das.OriginalDueDate)
	assert.True(t, das.Amount.IsZero())
	assert.Equal(t, domain.StatusPending, das.Status)
	assert.False(t, das.AutoCreated)

	defis := occurrences[1]
	assert.Equal(t, "DEFIS", defis.Title)
	assert.Equal(t, domain.RecurrenceAnnual, defis.Recurrence)
	assert.Equal(t, domain.NewDate(2025, time.October, 31), defis.DueDate)
	assert.Equal(t, domain.WeekendPostpone, defis.WeekendPolicy)
}
