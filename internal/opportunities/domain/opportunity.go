package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority is the qualitative urgency of an opportunity.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Contact is the contact bundle attached to an opportunity.
type Contact struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
	Social string `json:"social,omitempty"`
}

// HistoryEntry is one system-generated event in the opportunity's append-only
// history log.
type HistoryEntry struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Comment is one user-authored note in the opportunity's append-only comment log.
type Comment struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uuid.UUID `json:"authorId"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Opportunity is a tracked sales prospect moving through pipeline stages.
// The aggregate is persisted whole; StageKey is always a member of the
// stage catalog.
type Opportunity struct {
	ID            uuid.UUID  `json:"id"`
	Version       int64      `json:"version"`
	Title         string     `json:"title"`
	Value         int64      `json:"value"` // monetary value in cents
	StageKey      string     `json:"stageKey"`
	Probability   int        `json:"probability"` // percent, 0-100
	Priority      Priority   `json:"priority"`
	TargetCloseAt *time.Time `json:"targetCloseAt,omitempty"`
	Contact       Contact    `json:"contact"`
	ChannelID     *uuid.UUID `json:"channelId,omitempty"`
	ServiceTypeID *uuid.UUID `json:"serviceTypeId,omitempty"`
	// ClientID references the owning engagement. nil (or uuid.Nil) means the
	// prospect has no resolved client yet.
	ClientID  *uuid.UUID     `json:"clientId,omitempty"`
	History   []HistoryEntry `json:"history"`
	Comments  []Comment      `json:"comments"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// HasResolvedClient reports whether the client reference points at a real
// engagement id. A nil pointer and the uuid.Nil sentinel both mean "new or
// external client" and do not resolve.
func (o *Opportunity) HasResolvedClient() bool {
	return o.ClientID != nil && *o.ClientID != uuid.Nil
}

// AppendHistory adds a system-generated entry to the history log.
func (o *Opportunity) AppendHistory(message string, at time.Time) {
	o.History = append(o.History, HistoryEntry{ID: uuid.New(), Message: message, At: at})
}

// AppendComment adds a user-authored note to the comment log.
func (o *Opportunity) AppendComment(authorID uuid.UUID, text string, at time.Time) Comment {
	comment := Comment{ID: uuid.New(), AuthorID: authorID, Text: text, At: at}
	o.Comments = append(o.Comments, comment)
	return comment
}

// ApplyStage moves the opportunity to stageKey and records the move in the
// history log. Callers must have resolved stageKey against the catalog first.
func (o *Opportunity) ApplyStage(stageKey string, at time.Time) {
	from := o.StageKey
	o.StageKey = stageKey
	o.UpdatedAt = at
	o.AppendHistory(fmt.Sprintf("Stage changed from %s to %s", from, stageKey), at)
}

// LinkClient points the opportunity at an engagement and records the link.
func (o *Opportunity) LinkClient(engagementID uuid.UUID, at time.Time) {
	o.ClientID = &engagementID
	o.UpdatedAt = at
	o.AppendHistory(fmt.Sprintf("Linked to engagement %s", engagementID), at)
}

// New creates an opportunity in the given initial stage with probability 0.
func New(title string, value int64, initialStage string, at time.Time) *Opportunity {
	o := &Opportunity{
		ID:        uuid.New(),
		Title:     title,
		Value:     value,
		StageKey:  initialStage,
		Priority:  PriorityMedium,
		History:   []HistoryEntry{},
		Comments:  []Comment{},
		CreatedAt: at,
		UpdatedAt: at,
	}
	o.AppendHistory("Opportunity created", at)
	return o
}

// Duplicate is a copy-with-new-identity builder: the copy gets a fresh id,
// the catalog's first stage, probability 0, and empty history/comment logs.
// Mutable sub-state is never shared with the original.
func (o *Opportunity) Duplicate(initialStage string, at time.Time) *Opportunity {
	dup := New(o.Title+" (copy)", o.Value, initialStage, at)
	dup.Priority = o.Priority
	dup.Contact = o.Contact
	dup.ChannelID = cloneUUIDPtr(o.ChannelID)
	dup.ServiceTypeID = cloneUUIDPtr(o.ServiceTypeID)
	if o.TargetCloseAt != nil {
		t := *o.TargetCloseAt
		dup.TargetCloseAt = &t
	}
	return dup
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
