package sqlite

import (
	"context"
	"fmt"

	"github.com/rezkam/fiscal/internal/domain"
)

const clientColumns = `id, name, cnpj, tax_regime, business_activity, created_at`

func scanClient(row rowScanner) (*domain.Client, error) {
	var (
		c                   domain.Client
		activity, createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.CNPJ, &c.TaxRegime, &activity, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	c.BusinessActivity = domain.BusinessActivity(activity)
	return &c, nil
}

// FindClients returns every client ordered by name.
func (s *Store) FindClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}

	return clients, nil
}

// FindClientByID retrieves a single client.
func (s *Store) FindClientByID(ctx context.Context, id string) (*domain.Client, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	c, err := scanClient(s.q.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, id)
	}
	return c, nil
}

// CreateClient inserts a client.
func (s *Store) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := validateID(c.ID); err != nil {
		return nil, err
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO clients (id, name, cnpj, tax_regime, business_activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.CNPJ, c.TaxRegime, string(c.BusinessActivity), formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert client: %w", mapWriteError(err, nil))
	}

	return s.FindClientByID(ctx, c.ID)
}

const templateColumns = `id, name, description, tax_regimes, business_activities, items, kind, recurrence, day_of_month, created_at`

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var (
		t                           domain.Template
		regimes, activities, items  string
		kind, recurrence, createdAt string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &regimes, &activities, &items, &kind, &recurrence, &t.DayOfMonth, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if t.TaxRegimes, err = decodeJSON[string](regimes); err != nil {
		return nil, fmt.Errorf("invalid template tax regimes: %w", err)
	}
	if t.BusinessActivities, err = decodeJSON[domain.BusinessActivity](activities); err != nil {
		return nil, fmt.Errorf("invalid template activities: %w", err)
	}
	if t.Items, err = decodeJSON[domain.TemplateItem](items); err != nil {
		return nil, fmt.Errorf("invalid template items: %w", err)
	}
	if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}

	t.Kind = domain.Kind(kind)
	t.Recurrence = domain.Recurrence(recurrence)
	return &t, nil
}

// FindTemplates returns templates, restricted to those listing filter.TaxRegime when set.
func (s *Store) FindTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.Template, error) {
	query := "SELECT " + templateColumns + " FROM templates"
	var args []any
	if filter.TaxRegime != "" {
		query += " WHERE EXISTS (SELECT 1 FROM json_each(templates.tax_regimes) WHERE json_each.value = ?)"
		args = append(args, filter.TaxRegime)
	}
	query += " ORDER BY name"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

// CreateTemplate inserts a template. List fields are stored as JSON arrays.
func (s *Store) CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	if err := validateID(t.ID); err != nil {
		return nil, err
	}

	regimes, err := encodeJSON(t.TaxRegimes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tax regimes: %w", err)
	}
	activities, err := encodeJSON(t.BusinessActivities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activities: %w", err)
	}
	items, err := encodeJSON(t.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template items: %w", err)
	}

	recurrence := t.Recurrence
	if recurrence == "" {
		recurrence = domain.RecurrenceNone
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO templates (id, name, description, tax_regimes, business_activities, items, kind, recurrence, day_of_month, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, regimes, activities, items,
		string(t.Kind), string(recurrence), t.DayOfMonth, formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", mapWriteError(err, nil))
	}

	return s.findTemplateByID(ctx, t.ID)
}

func (s *Store) findTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	t, err := scanTemplate(s.q.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM templates WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound, id)
	}
	return t, nil
}
