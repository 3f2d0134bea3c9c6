package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/recurring"
)

// Service registers clients and seeds their occurrences from templates.
type Service struct {
	repo      Repository
	generator *recurring.Generator
	now       func() time.Time
}

// NewService creates a new client service. defaultPolicy applies to template
// items without a weekend rule.
func NewService(repo Repository, adjuster recurring.Adjuster, defaultPolicy domain.WeekendPolicy) *Service {
	return &Service{
		repo:      repo,
		generator: recurring.NewGenerator(adjuster, defaultPolicy),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateClientParams holds the input for registering a client.
type CreateClientParams struct {
	Name             string
	CNPJ             string
	TaxRegime        string
	BusinessActivity string

	// Confirm acknowledges a client with a similar name.
	Confirm bool
}

// CreateClientResult is the registered client and the occurrences its templates produced.
type CreateClientResult struct {
	Client      *domain.Client
	Occurrences []*domain.Occurrence
	Warning     *dedup.ClientResult
}

// CreateClient registers a client and applies matching templates.
// A CNPJ already on file fails with a *dedup.ConflictError wrapping
// ErrDuplicateClient; a similar name needs params.Confirm.
// Template application is best-effort: its failures are logged, never returned.
func (s *Service) CreateClient(ctx context.Context, params CreateClientParams) (*CreateClientResult, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	activity, err := domain.NewBusinessActivity(params.BusinessActivity)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find clients: %w", err)
	}

	result := &CreateClientResult{}
	check := dedup.CheckClient(name, params.CNPJ, existing)
	switch {
	case check.Blocking():
		return nil, &dedup.ConflictError{Err: domain.ErrDuplicateClient, Level: check.Level, Message: check.Message, Existing: check.Match}
	case check.IsDuplicate() && !params.Confirm:
		return nil, &dedup.ConflictError{Err: domain.ErrConfirmationRequired, Level: check.Level, Message: check.Message, Existing: check.Match}
	case check.IsDuplicate():
		result.Warning = &check
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := s.repo.CreateClient(ctx, &domain.Client{
		ID:               id.String(),
		Name:             name,
		CNPJ:             strings.TrimSpace(params.CNPJ),
		TaxRegime:        strings.TrimSpace(params.TaxRegime),
		BusinessActivity: activity,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	result.Client = created

	result.Occurrences = s.applyTemplates(ctx, created)

	return result, nil
}

// applyTemplates creates the occurrences of every template matching client.
func (s *Service) applyTemplates(ctx context.Context, client *domain.Client) []*domain.Occurrence {
	if client.TaxRegime == "" {
		return nil
	}

	templates, err := s.repo.FindTemplates(ctx, domain.TemplateFilter{TaxRegime: client.TaxRegime})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load templates for client", "client_id", client.ID, "error", err)
		return nil
	}

	planned, err := s.generator.FromTemplates(client, templates, s.now())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build template occurrences", "client_id", client.ID, "error", err)
		return nil
	}

	created := make([]*domain.Occurrence, 0, len(planned))
	for _, occ := range planned {
		// The client is new, so only this pass can already hold a match.
		if check := dedup.CheckOccurrence(dedup.CandidateFrom(occ), created); check.Blocking() {
			slog.InfoContext(ctx, "Skipping template occurrence already planned",
				"client_id", client.ID,
				"title", occ.Title,
				"existing_id", check.Match.ID)
			continue
		}

		saved, err := s.repo.CreateOccurrence(ctx, occ)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create template occurrence",
				"client_id", client.ID,
				"title", occ.Title,
				"error", err)
			continue
		}
		created = append(created, saved)
	}

	slog.InfoContext(ctx, "Templates applied to client",
		"client_id", client.ID,
		"templates", len(templates),
		"occurrences", len(created))

	return created
}

// GetClient retrieves a client by ID.
func (s *Service) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	if id == "" {
		return nil, domain.ErrClientNotFound
	}

	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	return client, nil
}
