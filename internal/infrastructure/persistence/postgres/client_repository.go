package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/fiscal/internal/domain"
)

// === Client Operations ===

const clientColumns = `id, name, cnpj, tax_regime, business_activity, created_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c         domain.Client
		id        pgtype.UUID
		activity  string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &c.Name, &c.CNPJ, &c.TaxRegime, &activity, &createdAt); err != nil {
		return nil, err
	}
	c.ID = pgtypeToUUIDString(id)
	c.BusinessActivity = domain.BusinessActivity(activity)
	c.CreatedAt = pgtypeToTime(createdAt)
	return &c, nil
}

// FindClients returns every client ordered by name.
func (s *Store) FindClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.db.Query(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY name")
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
	clientID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	c, err := scanClient(s.db.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", clientID))
	if err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, id)
	}
	return c, nil
}

// CreateClient inserts a client.
func (s *Store) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	id, err := parseID(c.ID)
	if err != nil {
		return nil, err
	}

	created, err := scanClient(s.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, cnpj, tax_regime, business_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		id, c.Name, c.CNPJ, c.TaxRegime, string(c.BusinessActivity), timeToPgtype(c.CreatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert client: %w", mapWriteError(err))
	}
	return created, nil
}

// === Template Operations ===

const templateColumns = `id, name, description, tax_regimes, business_activities, items, kind, recurrence, day_of_month, created_at`

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		t                domain.Template
		id               pgtype.UUID
		activities       []string
		items            []byte
		kind, recurrence string
		day              int32
		createdAt        pgtype.Timestamptz
	)
	if err := row.Scan(&id, &t.Name, &t.Description, &t.TaxRegimes, &activities, &items, &kind, &recurrence, &day, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("invalid template items: %w", err)
	}

	t.ID = pgtypeToUUIDString(id)
	t.BusinessActivities = stringsToActivities(activities)
	t.Kind = domain.Kind(kind)
	t.Recurrence = domain.Recurrence(recurrence)
	t.DayOfMonth = int(day)
	t.CreatedAt = pgtypeToTime(createdAt)
	return &t, nil
}

// FindTemplates returns templates, restricted to those listing filter.TaxRegime when set.
func (s *Store) FindTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.Template, error) {
	query := "SELECT " + templateColumns + " FROM templates"
	var args []any
	if filter.TaxRegime != "" {
		query += " WHERE $1 = ANY(tax_regimes)"
		args = append(args, filter.TaxRegime)
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query, args...)
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

// CreateTemplate inserts a template with its items as JSON.
func (s *Store) CreateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	id, err := parseID(t.ID)
	if err != nil {
		return nil, err
	}

	items := t.Items
	if items == nil {
		items = []domain.TemplateItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template items: %w", err)
	}

	regimes := t.TaxRegimes
	if regimes == nil {
		regimes = []string{}
	}
	recurrence := t.Recurrence
	if recurrence == "" {
		recurrence = domain.RecurrenceNone
	}

	created, err := scanTemplate(s.db.QueryRow(ctx, `
		INSERT INTO templates (id, name, description, tax_regimes, business_activities, items, kind, recurrence, day_of_month, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+templateColumns,
		id, t.Name, t.Description, regimes, activitiesToStrings(t.BusinessActivities), itemsJSON,
		string(t.Kind), string(recurrence), int32(t.DayOfMonth), timeToPgtype(t.CreatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", mapWriteError(err))
	}
	return created, nil
}
