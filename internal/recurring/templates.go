package recurring

import (
	"slices"

	"github.com/rezkam/fiscal/internal/domain"
)

// MatchesClient reports whether a template applies to a client.
//
// The template must list the client's tax regime. Activity rules:
//   - a template without activities matches any client
//   - a client without an activity matches only such templates
//   - a client doing both matches commerce, service and both templates
//   - otherwise the template must list the client's activity or both
func MatchesClient(tmpl *domain.Template, client *domain.Client) bool {
	if client.TaxRegime == "" || !slices.Contains(tmpl.TaxRegimes, client.TaxRegime) {
		return false
	}

	if len(tmpl.BusinessActivities) == 0 {
		return true
	}

	switch client.BusinessActivity {
	case "":
		return false
	case domain.ActivityBoth:
		return slices.ContainsFunc(tmpl.BusinessActivities, func(a domain.BusinessActivity) bool {
			return a == domain.ActivityCommerce || a == domain.ActivityService || a == domain.ActivityBoth
		})
	default:
		return slices.Contains(tmpl.BusinessActivities, client.BusinessActivity) ||
			slices.Contains(tmpl.BusinessActivities, domain.ActivityBoth)
	}
}

// EffectiveItems returns the template's items, or a single item built from the
// template's own fields when it predates item lists.
func EffectiveItems(tmpl *domain.Template) []domain.TemplateItem {
	if len(tmpl.Items) > 0 {
		return tmpl.Items
	}
	return []domain.TemplateItem{{
		Title:       tmpl.Name,
		Description: tmpl.Description,
		Kind:        tmpl.Kind,
		Recurrence:  tmpl.Recurrence,
		DayOfMonth:  tmpl.DayOfMonth,
		WeekendRule: domain.WeekendPostpone,
	}}
}
