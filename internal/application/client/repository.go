package client

import (
	"context"

	"github.com/rezkam/fiscal/internal/domain"
)

// Repository defines storage operations for clients and the templates applied to them.
type Repository interface {
	// === Client Operations ===

	// FindClients returns every client, ordered by name.
	FindClients(ctx context.Context) ([]*domain.Client, error)

	// FindClientByID retrieves a single client.
	// Returns domain.ErrClientNotFound if it doesn't exist.
	FindClientByID(ctx context.Context, id string) (*domain.Client, error)

	// CreateClient persists a new client.
	// Returns domain.ErrDuplicateClient if the CNPJ is already registered.
	CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)

	// === Template Operations ===

	// FindTemplates returns templates matching filter.
	FindTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.Template, error)

	// CreateTemplate persists a new template with its items.
	CreateTemplate(ctx context.Context, tmpl *domain.Template) (*domain.Template, error)

	// === Occurrence Operations ===

	// CreateOccurrence persists an occurrence generated from a template.
	// Returns domain.ErrDuplicateOccurrence on a unique-key violation.
	CreateOccurrence(ctx context.Context, occ *domain.Occurrence) (*domain.Occurrence, error)
}
