// Package transport defines the engagements HTTP DTOs.
package transport

import (
	"time"

	"clientdesk_backend/internal/engagements/domain"

	"github.com/google/uuid"
)

// Request DTOs

type ContactPayload struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Social string `json:"social,omitempty" validate:"omitempty,max=100"`
}

type CreateEngagementRequest struct {
	Name      string         `json:"name" validate:"required,min=1,max=200"`
	Contact   ContactPayload `json:"contact" validate:"required"`
	Checklist []string       `json:"checklist,omitempty" validate:"dive,min=1,max=500"`
}

type CompleteOnboardingRequest struct {
	RelationshipType string `json:"relationshipType" validate:"required,oneof=Recurring Project"`
	Force            bool   `json:"force,omitempty"`
}

type TerminateRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=1000"`
}

type SetRelationshipRequest struct {
	RelationshipType string `json:"relationshipType" validate:"required,oneof=Recurring Project"`
}

type SetInternalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Calm Demanding Problematic FinancialRisk"`
}

type RecurringSettingsRequest struct {
	ServiceType      string   `json:"serviceType,omitempty" validate:"omitempty,max=200"`
	Scope            string   `json:"scope,omitempty" validate:"omitempty,max=2000"`
	BillingDay       int      `json:"billingDay" validate:"required,gte=1,lte=31"`
	DefaultChecklist []string `json:"defaultChecklist" validate:"dive,min=1,max=500"`
}

type ChecklistItemRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

type ToggleItemRequest struct {
	Done bool `json:"done"`
}

type AddDeliverableRequest struct {
	ContainerID uuid.UUID `json:"containerId" validate:"required"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Category    string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Goal        int       `json:"goal" validate:"required,gte=1"`
}

type IncrementDeliverableRequest struct {
	ContainerID uuid.UUID `json:"containerId" validate:"required"`
	Delta       int       `json:"delta" validate:"required"`
}

type AddProjectRequest struct {
	Title string     `json:"title" validate:"required,min=1,max=200"`
	Value int64      `json:"value" validate:"gte=0"`
	DueAt *time.Time `json:"dueAt,omitempty"`
}

type SetProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof='In Progress' Completed Cancelled"`
}

type RenegotiateRequest struct {
	Value   int64      `json:"value" validate:"gte=0"`
	StartAt time.Time  `json:"startAt" validate:"required"`
	EndAt   *time.Time `json:"endAt,omitempty"`
	Note    string     `json:"note,omitempty" validate:"omitempty,max=1000"`
}

type RecordTransactionRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	Note   string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

type FinancialsRequest struct {
	CAC        *int64 `json:"cac,omitempty" validate:"omitempty,gte=0"`
	LTVManual  *int64 `json:"ltvManual,omitempty" validate:"omitempty,gte=0"`
	LTVDerived *bool  `json:"ltvDerived,omitempty"`
}

// Response DTOs

type ChecklistItemResponse struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Done bool      `json:"done"`
}

type DeliverableResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Goal     int       `json:"goal"`
	Current  int       `json:"current"`
	// Progress is the display ratio clamped to [0, 1]; Current keeps any
	// over-delivery.
	Progress float64 `json:"progress"`
}

type CycleResponse struct {
	ID           uuid.UUID               `json:"id"`
	PeriodLabel  string                  `json:"periodLabel"`
	Status       string                  `json:"status"`
	OpenedAt     time.Time               `json:"openedAt"`
	ClosedAt     *time.Time              `json:"closedAt,omitempty"`
	Checklist    []ChecklistItemResponse `json:"checklist"`
	Deliverables []DeliverableResponse   `json:"deliverables"`
}

type ProjectResponse struct {
	ID           uuid.UUID               `json:"id"`
	Title        string                  `json:"title"`
	Value        int64                   `json:"value"`
	Status       string                  `json:"status"`
	DueAt        *time.Time              `json:"dueAt,omitempty"`
	Billed       bool                    `json:"billed"`
	Checklist    []ChecklistItemResponse `json:"checklist"`
	Deliverables []DeliverableResponse   `json:"deliverables"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type ContractResponse struct {
	Value   int64      `json:"value"`
	StartAt time.Time  `json:"startAt"`
	EndAt   *time.Time `json:"endAt,omitempty"`
}

type ContractEventResponse struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
	Value  int64     `json:"value"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

type TransactionResponse struct {
	ID     uuid.UUID `json:"id"`
	Amount int64     `json:"amount"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

type HistoryEntryResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type RecurringSettingsResponse struct {
	ServiceType      string   `json:"serviceType,omitempty"`
	Scope            string   `json:"scope,omitempty"`
	BillingDay       int      `json:"billingDay"`
	DefaultChecklist []string `json:"defaultChecklist"`
}

type EngagementResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	Name                string                    `json:"name"`
	Contact             ContactPayload            `json:"contact"`
	LifecycleStage      string                    `json:"lifecycleStage"`
	RelationshipType    string                    `json:"relationshipType,omitempty"`
	InternalStatus      string                    `json:"internalStatus"`
	OnboardingChecklist []ChecklistItemResponse   `json:"onboardingChecklist"`
	Recurring           RecurringSettingsResponse `json:"recurring"`
	Cycles              []CycleResponse           `json:"cycles"`
	Projects            []ProjectResponse         `json:"projects"`
	Contract            ContractResponse          `json:"contract"`
	ContractHistory     []ContractEventResponse   `json:"contractHistory"`
	CAC                 int64                     `json:"cac"`
	LTV                 int64                     `json:"ltv"`
	LTVDerived          bool                      `json:"ltvDerived"`
	Transactions        []TransactionResponse     `json:"transactions"`
	SourceOpportunityID *uuid.UUID                `json:"sourceOpportunityId,omitempty"`
	History             []HistoryEntryResponse    `json:"history"`
	CreatedAt           time.Time                 `json:"createdAt"`
	UpdatedAt           time.Time                 `json:"updatedAt"`
}

// CloseCycleResponse reports a cycle rollover.
type CloseCycleResponse struct {
	Engagement EngagementResponse `json:"engagement"`
	Closed     CycleResponse      `json:"closed"`
	Opened     CycleResponse      `json:"opened"`
}

func toChecklist(items []domain.ChecklistItem) []ChecklistItemResponse {
	out := make([]ChecklistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ChecklistItemResponse{ID: it.ID, Text: it.Text, Done: it.Done})
	}
	return out
}

func toDeliverables(items []domain.Deliverable) []DeliverableResponse {
	out := make([]DeliverableResponse, 0, len(items))
	for _, d := range items {
		out = append(out, DeliverableResponse{
			ID:       d.ID,
			Name:     d.Name,
			Category: d.Category,
			Goal:     d.Goal,
			Current:  d.Current,
			Progress: d.Progress(),
		})
	}
	return out
}

// ToCycleResponse maps one cycle.
func ToCycleResponse(c domain.Cycle) CycleResponse {
	return CycleResponse{
		ID:           c.ID,
		PeriodLabel:  c.PeriodLabel,
		Status:       string(c.Status),
		OpenedAt:     c.OpenedAt,
		ClosedAt:     c.ClosedAt,
		Checklist:    toChecklist(c.Checklist),
		Deliverables: toDeliverables(c.Deliverables),
	}
}

// ToEngagementResponse maps the aggregate to its response DTO. LTV is the
// resolved value (manual or derived sum).
func ToEngagementResponse(e domain.Engagement) EngagementResponse {
	cycles := make([]CycleResponse, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		cycles = append(cycles, ToCycleResponse(c))
	}

	projects := make([]ProjectResponse, 0, len(e.Projects))
	for _, p := range e.Projects {
		projects = append(projects, ProjectResponse{
			ID:           p.ID,
			Title:        p.Title,
			Value:        p.Value,
			Status:       string(p.Status),
			DueAt:        p.DueAt,
			Billed:       p.Billed,
			Checklist:    toChecklist(p.Checklist),
			Deliverables: toDeliverables(p.Deliverables),
			CreatedAt:    p.CreatedAt,
		})
	}

	contractHistory := make([]ContractEventResponse, 0, len(e.ContractHistory))
	for _, ev := range e.ContractHistory {
		contractHistory = append(contractHistory, ContractEventResponse{
			ID:     ev.ID,
			Reason: string(ev.Reason),
			Value:  ev.Value,
			Note:   ev.Note,
			At:     ev.At,
		})
	}

	transactions := make([]TransactionResponse, 0, len(e.Transactions))
	for _, tx := range e.Transactions {
		transactions = append(transactions, TransactionResponse{ID: tx.ID, Amount: tx.Amount, Note: tx.Note, At: tx.At})
	}

	history := make([]HistoryEntryResponse, 0, len(e.History))
	for _, h := range e.History {
		history = append(history, HistoryEntryResponse{ID: h.ID, Message: h.Message, At: h.At})
	}

	return EngagementResponse{
		ID:               e.ID,
		Name:             e.Name,
		Contact:          ContactPayload{Name: e.Contact.Name, Phone: e.Contact.Phone, Email: e.Contact.Email, Social: e.Contact.Social},
		LifecycleStage:   string(e.LifecycleStage),
		RelationshipType: string(e.RelationshipType),
		InternalStatus:   string(e.InternalStatus),
		OnboardingChecklist: toChecklist(e.OnboardingChecklist),
		Recurring: RecurringSettingsResponse{
			ServiceType:      e.Recurring.ServiceType,
			Scope:            e.Recurring.Scope,
			BillingDay:       e.Recurring.BillingDay,
			DefaultChecklist: e.Recurring.DefaultChecklist,
		},
		Cycles:              cycles,
		Projects:            projects,
		Contract:            ContractResponse{Value: e.Contract.Value, StartAt: e.Contract.StartAt, EndAt: e.Contract.EndAt},
		ContractHistory:     contractHistory,
		CAC:                 e.CAC,
		LTV:                 e.LTV(),
		LTVDerived:          e.LTVDerived,
		Transactions:        transactions,
		SourceOpportunityID: e.SourceOpportunityID,
		History:             history,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// ToEngagementResponses maps a list of aggregates.
func ToEngagementResponses(items []domain.Engagement) []EngagementResponse {
	out := make([]EngagementResponse, 0, len(items))
	for _, e := range items {
		out = append(out, ToEngagementResponse(e))
	}
	return out
}
