package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/dedup"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/recurring"
)

// === Requests ===

// RunJobRequest optionally overrides the evaluation date.
type RunJobRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type CreateOccurrenceRequest struct {
	ClientID      string          `json:"client_id" validate:"required,uuid"`
	Type          string          `json:"type" validate:"required,oneof=obligation tax"`
	Title         string          `json:"title" validate:"required,max=255"`
	Description   string          `json:"description"`
	Notes         string          `json:"notes"`
	Responsible   string          `json:"responsible"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status        string          `json:"status"`
	Recurrence    string          `json:"recurrence" validate:"omitempty,oneof=none monthly quarterly semiannual annual"`
	WeekendPolicy string          `json:"weekend_policy"`
	Confirm       bool            `json:"confirm"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateBatchRequest struct {
	ClientID      string          `json:"client_id" validate:"required,uuid"`
	ObligationID  *string         `json:"obligation_id" validate:"omitempty,uuid"`
	Total         int             `json:"total" validate:"required,min=1"`
	AnchorDate    string          `json:"anchor_date" validate:"required,datetime=2006-01-02"`
	Amount        decimal.Decimal `json:"amount"`
	Protocol      string          `json:"protocol"`
	WeekendPolicy string          `json:"weekend_policy"`
	Confirmed     bool            `json:"confirmed"`
}

type CreateClientRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	CNPJ             string `json:"cnpj"`
	TaxRegime        string `json:"tax_regime"`
	BusinessActivity string `json:"business_activity" validate:"omitempty,oneof=commerce service both"`
	Confirm          bool   `json:"confirm"`
}

type TemplateItemRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,oneof=obligation tax"`
	Recurrence  string `json:"recurrence" validate:"omitempty,oneof=none monthly quarterly semiannual annual"`
	DayOfMonth  int    `json:"day_of_month" validate:"gte=0,lte=31"`
	WeekendRule string `json:"weekend_rule"`
	Sphere      string `json:"sphere"`
}

type CreateTemplateRequest struct {
	Name               string                `json:"name" validate:"required,max=255"`
	Description        string                `json:"description"`
	TaxRegimes         []string              `json:"tax_regimes"`
	BusinessActivities []string              `json:"business_activities" validate:"dive,oneof=commerce service both"`
	Items              []TemplateItemRequest `json:"items" validate:"dive"`
	Type               string                `json:"type" validate:"omitempty,oneof=obligation tax"`
	Recurrence         string                `json:"recurrence" validate:"omitempty,oneof=none monthly quarterly semiannual annual"`
	DayOfMonth         int                   `json:"day_of_month" validate:"gte=0,lte=31"`
}

// === Responses ===

// RunJobResponse keeps the camelCase field names existing job callers expect.
type RunJobResponse struct {
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped"`
	Date            string `json:"date"`
	Message         string `json:"message"`
	CreatedCount    int    `json:"createdCount"`
	DuplicateCount  int    `json:"duplicateCount"`
	NotDueCount     int    `json:"notDueCount"`
	FailedCount     int    `json:"failedCount"`
	HistoryFailures int    `json:"historyFailures"`
}

type OccurrenceResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Responsible     string          `json:"responsible,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         string          `json:"due_date"`
	OriginalDueDate *string         `json:"original_due_date,omitempty"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	Recurrence      string          `json:"recurrence"`
	WeekendPolicy   string          `json:"weekend_policy,omitempty"`
	ParentID        *string         `json:"parent_id,omitempty"`
	AutoCreated     bool            `json:"auto_created"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type WarningResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type CreateOccurrenceResponse struct {
	Occurrence OccurrenceResponse `json:"occurrence"`
	Warning    *WarningResponse   `json:"warning,omitempty"`
}

type InstallmentResponse struct {
	ID                string          `json:"id"`
	ObligationID      *string         `json:"obligation_id,omitempty"`
	ClientID          string          `json:"client_id"`
	InstallmentNumber int             `json:"installment_number"`
	TotalInstallments int             `json:"total_installments"`
	DueDate           string          `json:"due_date"`
	OriginalDueDate   *string         `json:"original_due_date,omitempty"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Protocol          *string         `json:"protocol,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type BatchResponse struct {
	Installments []InstallmentResponse `json:"installments"`
	Created      int                   `json:"created"`
	Skipped      int                   `json:"skipped"`
	Failed       int                   `json:"failed"`
	Cancelled    bool                  `json:"cancelled"`
	Message      string                `json:"message"`
}

type ClientResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CNPJ             string    `json:"cnpj,omitempty"`
	TaxRegime        string    `json:"tax_regime,omitempty"`
	BusinessActivity string    `json:"business_activity,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateClientResponse struct {
	Client      ClientResponse       `json:"client"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
	Warning     *WarningResponse     `json:"warning,omitempty"`
}

type TemplateResponse struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Description        string                `json:"description,omitempty"`
	TaxRegimes         []string              `json:"tax_regimes"`
	BusinessActivities []string              `json:"business_activities"`
	Items              []domain.TemplateItem `json:"items"`
	Type               string                `json:"type,omitempty"`
	Recurrence         string                `json:"recurrence,omitempty"`
	DayOfMonth         int                   `json:"day_of_month,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

// AdjustmentResponse previews where a date lands under a weekend policy.
type AdjustmentResponse struct {
	Date      string `json:"date"`
	Policy    string `json:"policy"`
	DueDate   string `json:"due_date"`
	Moved     bool   `json:"moved"`
	Reference string `json:"reference"`
}

// === Mappers ===

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(*t)
	return &s
}

func toRunJobResponse(r *scheduling.RunResult) RunJobResponse {
	return RunJobResponse{
		Success:         r.Success,
		Skipped:         r.Skipped,
		Date:            domain.FormatDate(r.Date),
		Message:         r.Message,
		CreatedCount:    r.CreatedCount,
		DuplicateCount:  r.DuplicateCount,
		NotDueCount:     r.NotDueCount,
		FailedCount:     r.FailedCount,
		HistoryFailures: r.HistoryFailures,
	}
}

func toOccurrenceResponse(o *domain.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:              o.ID,
		ClientID:        o.ClientID,
		Type:            string(o.Kind),
		Title:           o.Title,
		Description:     o.Description,
		Notes:           o.Notes,
		Responsible:     o.Responsible,
		Amount:          o.Amount,
		DueDate:         domain.FormatDate(o.DueDate),
		OriginalDueDate: formatDatePtr(o.OriginalDueDate),
		Reference:       recurring.ReferenceLabel(o.DueDate, o.Recurrence),
		Status:          string(o.Status),
		Recurrence:      string(o.Recurrence),
		WeekendPolicy:   string(o.WeekendPolicy),
		ParentID:        o.ParentID,
		AutoCreated:     o.AutoCreated,
		CompletedAt:     o.CompletedAt,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOccurrenceResponses(occurrences []*domain.Occurrence) []OccurrenceResponse {
	out := make([]OccurrenceResponse, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, toOccurrenceResponse(o))
	}
	return out
}

func toInstallmentResponse(i *domain.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:                i.ID,
		ObligationID:      i.ObligationID,
		ClientID:          i.ClientID,
		InstallmentNumber: i.InstallmentNumber,
		TotalInstallments: i.TotalInstallments,
		DueDate:           domain.FormatDate(i.DueDate),
		OriginalDueDate:   formatDatePtr(i.OriginalDueDate),
		Status:            string(i.Status),
		Amount:            i.Amount,
		Protocol:          i.Protocol,
		PaidAt:            i.PaidAt,
		CreatedAt:         i.CreatedAt,
	}
}

func toInstallmentResponses(installments []*domain.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, 0, len(installments))
	for _, i := range installments {
		out = append(out, toInstallmentResponse(i))
	}
	return out
}

func toBatchResponse(r *installment.BatchResult) BatchResponse {
	return BatchResponse{
		Installments: toInstallmentResponses(r.Installments),
		Created:      r.Created,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		Cancelled:    r.Cancelled,
		Message:      r.Message,
	}
}

func toClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:               c.ID,
		Name:             c.Name,
		CNPJ:             c.CNPJ,
		TaxRegime:        c.TaxRegime,
		BusinessActivity: string(c.BusinessActivity),
		CreatedAt:        c.CreatedAt,
	}
}

func toTemplateResponse(t *domain.Template) TemplateResponse {
	activities := make([]string, 0, len(t.BusinessActivities))
	for _, a := range t.BusinessActivities {
		activities = append(activities, string(a))
	}
	regimes := t.TaxRegimes
	if regimes == nil {
		regimes = []string{}
	}
	items := t.Items
	if items == nil {
		items = []domain.TemplateItem{}
	}
	return TemplateResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Description:        t.Description,
		TaxRegimes:         regimes,
		BusinessActivities: activities,
		Items:              items,
		Type:               string(t.Kind),
		Recurrence:         string(t.Recurrence),
		DayOfMonth:         t.DayOfMonth,
		CreatedAt:          t.CreatedAt,
	}
}

func toTemplateResponses(templates []*domain.Template) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	return out
}

func toOccurrenceWarning(r *dedup.Result) *WarningResponse {
	if r == nil {
		return nil
	}
	return &WarningResponse{Level: string(r.Level), Message: r.Message}
}

func toClientWarning(r *dedup.ClientResult) *WarningResponse {
	if r == nil {
		return nil
	}
	return &WarningResponse{Level: string(r.Level), Message: r.Message}
}

// presentExisting maps the record carried by a duplication conflict.
func presentExisting(existing any) any {
	switch v := existing.(type) {
	case *domain.Occurrence:
		if v != nil {
			return toOccurrenceResponse(v)
		}
	case *domain.Installment:
		if v != nil {
			return toInstallmentResponse(v)
		}
	case *domain.Client:
		if v != nil {
			return toClientResponse(v)
		}
	}
	return nil
}
