package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/fiscal/internal/application/client"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// CreateClient registers a client and applies the templates matching its regime.
// POST /v1/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	result, err := h.clients.CreateClient(r.Context(), client.CreateClientParams{
		Name:             req.Name,
		CNPJ:             req.CNPJ,
		TaxRegime:        req.TaxRegime,
		BusinessActivity: req.BusinessActivity,
		Confirm:          req.Confirm,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, CreateClientResponse{
		Client:      toClientResponse(result.Client),
		Occurrences: toOccurrenceResponses(result.Occurrences),
		Warning:     toClientWarning(result.Warning),
	})
}

// GetClient GET /v1/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, toClientResponse(c))
}

// CreateTemplate POST /v1/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	items := make([]client.TemplateItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, client.TemplateItemParams{
			Title:       it.Title,
			Description: it.Description,
			Kind:        it.Type,
			Recurrence:  it.Recurrence,
			DayOfMonth:  it.DayOfMonth,
			WeekendRule: it.WeekendRule,
			Sphere:      it.Sphere,
		})
	}

	tmpl, err := h.clients.CreateTemplate(r.Context(), client.CreateTemplateParams{
		Name:               req.Name,
		Description:        req.Description,
		TaxRegimes:         req.TaxRegimes,
		BusinessActivities: req.BusinessActivities,
		Items:              items,
		Kind:               req.Type,
		Recurrence:         req.Recurrence,
		DayOfMonth:         req.DayOfMonth,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, toTemplateResponse(tmpl))
}

// ListTemplates GET /v1/templates?tax_regime=
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.clients.ListTemplates(r.Context(), r.URL.Query().Get("tax_regime"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"templates": toTemplateResponses(templates)})
}
