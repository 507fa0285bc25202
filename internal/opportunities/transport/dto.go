// Package transport defines the opportunities HTTP DTOs.
package transport

import (
	"time"

	"clientdesk_backend/internal/opportunities/domain"

	"github.com/google/uuid"
)

// Request DTOs

type ContactPayload struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Social string `json:"social,omitempty" validate:"omitempty,max=100"`
}

type CreateOpportunityRequest struct {
	Title         string         `json:"title" validate:"required,min=1,max=200"`
	Value         int64          `json:"value" validate:"gte=0"`
	Priority      *string        `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	TargetCloseAt *time.Time     `json:"targetCloseAt,omitempty"`
	Contact       ContactPayload `json:"contact" validate:"required"`
	ChannelID     *uuid.UUID     `json:"channelId,omitempty"`
	ServiceTypeID *uuid.UUID     `json:"serviceTypeId,omitempty"`
	// StageKey overrides the default initial stage (first catalog stage).
	StageKey    *string `json:"stageKey,omitempty"`
	Probability *int    `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type UpdateOpportunityRequest struct {
	Title         *string         `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Value         *int64          `json:"value,omitempty" validate:"omitempty,gte=0"`
	Priority      *string         `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Probability   *int            `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	TargetCloseAt *time.Time      `json:"targetCloseAt,omitempty"`
	Contact       *ContactPayload `json:"contact,omitempty"`
}

// TransitionRequest requests a stage change: either an explicit target stage
// key, or direction "next" to advance one position in catalog order.
type TransitionRequest struct {
	StageKey  string `json:"stageKey,omitempty"`
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=next"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

// Response DTOs

type HistoryEntryResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type CommentResponse struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uuid.UUID `json:"authorId"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

type OpportunityResponse struct {
	ID            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Value         int64                  `json:"value"`
	StageKey      string                 `json:"stageKey"`
	Probability   int                    `json:"probability"`
	Priority      string                 `json:"priority"`
	TargetCloseAt *time.Time             `json:"targetCloseAt,omitempty"`
	Contact       ContactPayload         `json:"contact"`
	ChannelID     *uuid.UUID             `json:"channelId,omitempty"`
	ServiceTypeID *uuid.UUID             `json:"serviceTypeId,omitempty"`
	ClientID      *uuid.UUID             `json:"clientId,omitempty"`
	History       []HistoryEntryResponse `json:"history"`
	Comments      []CommentResponse      `json:"comments"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// TransitionResponse is the result of a stage transition. AutomationWarning
// is non-empty when win automation degraded; the transition itself committed.
type TransitionResponse struct {
	Opportunity       OpportunityResponse `json:"opportunity"`
	Changed           bool                `json:"changed"`
	EngagementID      *uuid.UUID          `json:"engagementId,omitempty"`
	AutomationWarning string              `json:"automationWarning,omitempty"`
}

// ToOpportunityResponse maps the aggregate to its response DTO.
func ToOpportunityResponse(o domain.Opportunity) OpportunityResponse {
	history := make([]HistoryEntryResponse, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, HistoryEntryResponse{ID: h.ID, Message: h.Message, At: h.At})
	}
	comments := make([]CommentResponse, 0, len(o.Comments))
	for _, c := range o.Comments {
		comments = append(comments, CommentResponse{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text, At: c.At})
	}

	return OpportunityResponse{
		ID:            o.ID,
		Title:         o.Title,
		Value:         o.Value,
		StageKey:      o.StageKey,
		Probability:   o.Probability,
		Priority:      string(o.Priority),
		TargetCloseAt: o.TargetCloseAt,
		Contact: ContactPayload{
			Name:   o.Contact.Name,
			Phone:  o.Contact.Phone,
			Email:  o.Contact.Email,
			Social: o.Contact.Social,
		},
		ChannelID:     o.ChannelID,
		ServiceTypeID: o.ServiceTypeID,
		ClientID:      o.ClientID,
		History:       history,
		Comments:      comments,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOpportunityResponses maps a list of aggregates.
func ToOpportunityResponses(items []domain.Opportunity) []OpportunityResponse {
	out := make([]OpportunityResponse, 0, len(items))
	for _, o := range items {
		out = append(out, ToOpportunityResponse(o))
	}
	return out
}
