package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rezkam/fiscal/internal/domain"
)

// TemplateItemParams is one occurrence definition of a new template.
type TemplateItemParams struct {
	Title       string
	Description string
	Kind        string
	Recurrence  string
	DayOfMonth  int
	WeekendRule string
	Sphere      string
}

// CreateTemplateParams holds the input for a new template. Items may be empty,
// in which case Name, Kind, Recurrence and DayOfMonth describe its single item.
type CreateTemplateParams struct {
	Name               string
	Description        string
	TaxRegimes         []string
	BusinessActivities []string
	Items              []TemplateItemParams

	Kind       string
	Recurrence string
	DayOfMonth int
}

// CreateTemplate validates and persists a template.
func (s *Service) CreateTemplate(ctx context.Context, params CreateTemplateParams) (*domain.Template, error) {
	name, err := domain.NewTitle(params.Name)
	if err != nil {
		if errors.Is(err, domain.ErrTitleRequired) {
			return nil, domain.ErrNameRequired
		}
		return nil, err
	}

	kind, err := optionalKind(params.Kind)
	if err != nil {
		return nil, err
	}
	recurrence, err := domain.NewRecurrence(params.Recurrence)
	if err != nil {
		return nil, err
	}
	if err := validateDay(params.DayOfMonth); err != nil {
		return nil, err
	}

	activities := make([]domain.BusinessActivity, 0, len(params.BusinessActivities))
	for _, a := range params.BusinessActivities {
		activity, err := domain.NewBusinessActivity(a)
		if err != nil {
			return nil, err
		}
		if activity != "" {
			activities = append(activities, activity)
		}
	}

	regimes := make([]string, 0, len(params.TaxRegimes))
	for _, r := range params.TaxRegimes {
		if r = strings.TrimSpace(r); r != "" {
			regimes = append(regimes, r)
		}
	}

	items := make([]domain.TemplateItem, 0, len(params.Items))
	for i, p := range params.Items {
		item, err := newTemplateItem(p)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := s.repo.CreateTemplate(ctx, &domain.Template{
		ID:                 id.String(),
		Name:               name.String(),
		Description:        params.Description,
		TaxRegimes:         regimes,
		BusinessActivities: activities,
		Items:              items,
		Kind:               kind,
		Recurrence:         recurrence,
		DayOfMonth:         params.DayOfMonth,
		CreatedAt:          s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return created, nil
}

// ListTemplates returns templates, optionally restricted to a tax regime.
func (s *Service) ListTemplates(ctx context.Context, taxRegime string) ([]*domain.Template, error) {
	templates, err := s.repo.FindTemplates(ctx, domain.TemplateFilter{TaxRegime: strings.TrimSpace(taxRegime)})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func newTemplateItem(p TemplateItemParams) (domain.TemplateItem, error) {
	title, err := domain.NewTitle(p.Title)
	if err != nil {
		return domain.TemplateItem{}, err
	}
	kind, err := optionalKind(p.Kind)
	if err != nil {
		return domain.TemplateItem{}, err
	}
	recurrence, err := domain.NewRecurrence(p.Recurrence)
	if err != nil {
		return domain.TemplateItem{}, err
	}
	policy, err := domain.NewWeekendPolicy(p.WeekendRule)
	if err != nil {
		return domain.TemplateItem{}, err
	}
	if err := validateDay(p.DayOfMonth); err != nil {
		return domain.TemplateItem{}, err
	}

	return domain.TemplateItem{
		Title:       title.String(),
		Description: p.Description,
		Kind:        kind,
		Recurrence:  recurrence,
		DayOfMonth:  p.DayOfMonth,
		WeekendRule: policy,
		Sphere:      strings.TrimSpace(p.Sphere),
	}, nil
}

// optionalKind accepts an empty kind, which template application reads as obligation.
func optionalKind(s string) (domain.Kind, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return domain.NewKind(s)
}

// validateDay accepts 0 (use the default day) through 31.
func validateDay(day int) error {
	if day < 0 || day > 31 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidDayOfMonth, day)
	}
	return nil
}
