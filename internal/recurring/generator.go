package recurring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rezkam/fiscal/internal/calendar"
	"github.com/rezkam/fiscal/internal/domain"
)

// Adjuster shifts computed due dates onto business days.
type Adjuster interface {
	Resolve(t time.Time, policy domain.WeekendPolicy) calendar.Adjustment
}

// Generator builds new occurrences and installments with their due dates
// computed and adjusted. It does not persist anything.
type Generator struct {
	adjuster      Adjuster
	defaultPolicy domain.WeekendPolicy
	now           func() time.Time
}

// NewGenerator creates a Generator. defaultPolicy applies to records without
// their own weekend policy; an empty value means postpone.
func NewGenerator(adjuster Adjuster, defaultPolicy domain.WeekendPolicy) *Generator {
	return &Generator{
		adjuster:      adjuster,
		defaultPolicy: defaultPolicy.Or(domain.WeekendPostpone),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// DefaultPolicy returns the policy used when a record does not specify one.
func (g *Generator) DefaultPolicy() domain.WeekendPolicy {
	return g.defaultPolicy
}

// Resolve adjusts a computed due date under policy, falling back to the default policy.
func (g *Generator) Resolve(t time.Time, policy domain.WeekendPolicy) calendar.Adjustment {
	return g.adjuster.Resolve(t, policy.Or(g.defaultPolicy))
}

// Successor builds the occurrence that follows source in eval's month.
// Cadence is not checked here; callers decide whether the successor is due.
func (g *Generator) Successor(source *domain.Occurrence, eval time.Time) (*domain.Occurrence, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate occurrence ID: %w", err)
	}

	adj := g.Resolve(NextDueDate(source.PeriodDate(), eval), source.WeekendPolicy)
	parentID := source.ID
	now := g.now()

	return &domain.Occurrence{
		ID:              id.String(),
		ClientID:        source.ClientID,
		Kind:            source.Kind,
		Title:           source.Title,
		Description:     source.Description,
		Notes:           source.Notes,
		Responsible:     source.Responsible,
		Amount:          source.Amount,
		DueDate:         adj.DueDate,
		OriginalDueDate: adj.Original,
		Status:          domain.StatusPending,
		Recurrence:      source.Recurrence,
		WeekendPolicy:   source.WeekendPolicy,
		ParentID:        &parentID,
		AutoCreated:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// InstallmentPlan describes a series of installments sharing one count.
type InstallmentPlan struct {
	ClientID     string
	ObligationID *string
	Total        int
	Anchor       time.Time
	Amount       decimal.Decimal
	Protocol     *string
	Policy       domain.WeekendPolicy
}

// Installments builds the plan's installments. Installment i is due i-1 months
// after the anchor, each date adjusted on its own.
func (g *Generator) Installments(plan InstallmentPlan) ([]*domain.Installment, error) {
	if plan.Total < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidInstallmentCount, plan.Total)
	}

	now := g.now()
	installments := make([]*domain.Installment, 0, plan.Total)
	for i := 1; i <= plan.Total; i++ {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate installment ID: %w", err)
		}

		adj := g.Resolve(AddMonths(plan.Anchor, i-1), plan.Policy)
		installments = append(installments, &domain.Installment{
			ID:                id.String(),
			ObligationID:      plan.ObligationID,
			ClientID:          plan.ClientID,
			InstallmentNumber: i,
			TotalInstallments: plan.Total,
			DueDate:           adj.DueDate,
			OriginalDueDate:   adj.Original,
			Status:            domain.InstallmentPending,
			Amount:            plan.Amount,
			Protocol:          plan.Protocol,
			CreatedAt:         now,
		})
	}
	return installments, nil
}

// FromTemplates builds the occurrences the matching templates define for a new client.
// Templates that do not match the client's regime and activity are skipped.
func (g *Generator) FromTemplates(client *domain.Client, templates []*domain.Template, today time.Time) ([]*domain.Occurrence, error) {
	var occurrences []*domain.Occurrence
	now := g.now()

	for _, tmpl := range templates {
		if !MatchesClient(tmpl, client) {
			continue
		}

		for _, item := range EffectiveItems(tmpl) {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("failed to generate occurrence ID: %w", err)
			}

			kind := item.Kind
			if kind == "" {
				kind = domain.KindObligation
			}
			recurrence := item.Recurrence
			if recurrence == "" {
				recurrence = domain.RecurrenceNone
			}

			adj := g.Resolve(TemplateDueDate(item.DayOfMonth, today), item.WeekendRule)
			occurrences = append(occurrences, &domain.Occurrence{
				ID:              id.String(),
				ClientID:        client.ID,
				Kind:            kind,
				Title:           item.Title,
				Description:     item.Description,
				Amount:          decimal.Zero,
				DueDate:         adj.DueDate,
				OriginalDueDate: adj.Original,
				Status:          domain.StatusPending,
				Recurrence:      recurrence,
				WeekendPolicy:   item.WeekendRule,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}

	return occurrences, nil
}
