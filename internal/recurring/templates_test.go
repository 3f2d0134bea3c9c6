package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezkam/fiscal/internal/domain"
)

func TestMatchesClient(t *testing.T) {
	acts := func(a ...domain.BusinessActivity) []domain.BusinessActivity { return a }

	tests := []struct {
		name       string
		regimes    []string
		activities []domain.BusinessActivity
		regime     string
		activity   domain.BusinessActivity
		want       bool
	}{
		{"regime missing from template", []string{"lucro_real"}, nil, "simples_nacional", domain.ActivityService, false},
		{"client without regime", []string{"simples_nacional"}, nil, "", domain.ActivityService, false},
		{"no activity filter", []string{"simples_nacional"}, nil, "simples_nacional", "", true},
		{"client without activity", []string{"simples_nacional"}, acts(domain.ActivityService), "simples_nacional", "", false},
		{"same activity", []string{"simples_nacional"}, acts(domain.ActivityService), "simples_nacional", domain.ActivityService, true},
		{"other activity", []string{"simples_nacional"}, acts(domain.ActivityCommerce), "simples_nacional", domain.ActivityService, false},
		{"template for both", []string{"simples_nacional"}, acts(domain.ActivityBoth), "simples_nacional", domain.ActivityCommerce, true},
		{"client both takes commerce", []string{"simples_nacional"}, acts(domain.ActivityCommerce), "simples_nacional", domain.ActivityBoth, true},
		{"client both takes service", []string{"simples_nacional"}, acts(domain.ActivityService), "simples_nacional", domain.ActivityBoth, true},
		{"client both ignores unknown", []string{"simples_nacional"}, acts("industry"), "simples_nacional", domain.ActivityBoth, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &domain.Template{TaxRegimes: tt.regimes, BusinessActivities: tt.activities}
			client := &domain.Client{TaxRegime: tt.regime, BusinessActivity: tt.activity}
			assert.Equal(t, tt.want, MatchesClient(tmpl, client))
		})
	}
}

func TestEffectiveItems_LegacyTemplate(t *testing.T) {
	tmpl := &domain.Template{
		Name:        "DCTFWeb",
		Description: "monthly declaration",
		Kind:        domain.KindObligation,
		Recurrence:  domain.RecurrenceMonthly,
		DayOfMonth:  15,
	}

	items := EffectiveItems(tmpl)
	assert.Equal(t, []domain.TemplateItem{{
		Title:       "DCTFWeb",
		Description: "monthly declaration",
		Kind:        domain.KindObligation,
		Recurrence:  domain.RecurrenceMonthly,
		DayOfMonth:  15,
		WeekendRule: domain.WeekendPostpone,
	}}, items)

	tmpl.Items = []domain.TemplateItem{{Title: "A"}, {Title: "B"}}
	assert.Len(t, EffectiveItems(tmpl), 2)
}
