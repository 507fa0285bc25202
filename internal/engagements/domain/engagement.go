// Package domain provides core business rules for the engagements bounded
// context: the client lifecycle state machine, recurring cycle rollover, and
// deliverable quota tracking.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleStage is the coarse lifecycle position of an engagement.
type LifecycleStage string

const (
	LifecycleOnboarding LifecycleStage = "onboarding"
	LifecycleActive     LifecycleStage = "active"
	LifecycleTerminated LifecycleStage = "terminated"
)

// RelationshipType selects which execution substructure is authoritative:
// Cycles for Recurring, Projects for Project.
type RelationshipType string

const (
	RelationshipRecurring RelationshipType = "Recurring"
	RelationshipProject   RelationshipType = "Project"
)

// InternalStatus is a qualitative health tag, independent of LifecycleStage.
type InternalStatus string

const (
	StatusCalm          InternalStatus = "Calm"
	StatusDemanding     InternalStatus = "Demanding"
	StatusProblematic   InternalStatus = "Problematic"
	StatusFinancialRisk InternalStatus = "FinancialRisk"
)

// ContractReason tags entries in the contract history log.
type ContractReason string

const (
	ReasonInitialAgreement ContractReason = "Initial Agreement"
	ReasonRenegotiation    ContractReason = "Renegotiation"
	ReasonTermination      ContractReason = "Termination"
)

// Contact is the contact bundle attached to an engagement.
type Contact struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
	Social string `json:"social,omitempty"`
}

// ChecklistItem is one entry in an onboarding or cycle checklist.
type ChecklistItem struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Done bool      `json:"done"`
}

// ChecklistComplete reports whether every item is done. An empty checklist is
// vacuously complete.
func ChecklistComplete(items []ChecklistItem) bool {
	for _, item := range items {
		if !item.Done {
			return false
		}
	}
	return true
}

// CloneChecklist builds a fresh checklist from template texts: new item
// identities, all unchecked, no shared state with the template.
func CloneChecklist(template []string) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(template))
	for _, text := range template {
		items = append(items, ChecklistItem{ID: uuid.New(), Text: text})
	}
	return items
}

// RecurringSettings configures the Recurring execution mode.
type RecurringSettings struct {
	ServiceType string `json:"serviceType,omitempty"`
	Scope       string `json:"scope,omitempty"`
	// BillingDay is the day of month (1-31) the cycle bills on.
	BillingDay int `json:"billingDay"`
	// DefaultChecklist is the template cloned into each newly opened cycle.
	// Editing it only affects cycles created afterwards.
	DefaultChecklist []string `json:"defaultChecklist"`
}

// Contract is the current commercial agreement.
type Contract struct {
	Value   int64      `json:"value"` // cents
	StartAt time.Time  `json:"startAt"`
	EndAt   *time.Time `json:"endAt,omitempty"`
}

// ContractEvent is one append-only entry in the contract history log.
type ContractEvent struct {
	ID     uuid.UUID      `json:"id"`
	Reason ContractReason `json:"reason"`
	Value  int64          `json:"value"`
	Note   string         `json:"note,omitempty"`
	At     time.Time      `json:"at"`
}

// Transaction is a realized financial transaction associated with the
// engagement, used for derived LTV.
type Transaction struct {
	ID     uuid.UUID `json:"id"`
	Amount int64     `json:"amount"` // cents
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// HistoryEntry is one system-generated event in the engagement's history log.
type HistoryEntry struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Engagement is an onboarded or active client relationship record.
type Engagement struct {
	ID               uuid.UUID        `json:"id"`
	Version          int64            `json:"version"`
	Name             string           `json:"name"`
	Contact          Contact          `json:"contact"`
	LifecycleStage   LifecycleStage   `json:"lifecycleStage"`
	RelationshipType RelationshipType `json:"relationshipType,omitempty"`
	InternalStatus   InternalStatus   `json:"internalStatus"`

	OnboardingChecklist []ChecklistItem `json:"onboardingChecklist"`

	// Recurring execution mode. Cycles[0] is the current open cycle;
	// the list is ordered newest first.
	Recurring RecurringSettings `json:"recurring"`
	Cycles    []Cycle           `json:"cycles"`

	// Project execution mode.
	Projects []Project `json:"projects"`

	Contract        Contract        `json:"contract"`
	ContractHistory []ContractEvent `json:"contractHistory"`

	// CAC is the manually entered acquisition cost (cents).
	CAC int64 `json:"cac"`
	// LTVManual is used when LTVDerived is false; otherwise LTV is the sum of
	// recorded transactions.
	LTVManual    int64         `json:"ltvManual"`
	LTVDerived   bool          `json:"ltvDerived"`
	Transactions []Transaction `json:"transactions"`

	// SourceOpportunityID is set when win automation created this engagement.
	// It is the idempotency key that makes automation repair safe.
	SourceOpportunityID *uuid.UUID `json:"sourceOpportunityId,omitempty"`

	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// AppendHistory adds a system-generated entry to the history log.
func (e *Engagement) AppendHistory(message string, at time.Time) {
	e.History = append(e.History, HistoryEntry{ID: uuid.New(), Message: message, At: at})
}

// CurrentCycle returns the open head cycle, if any.
func (e *Engagement) CurrentCycle() *Cycle {
	if len(e.Cycles) == 0 {
		return nil
	}
	return &e.Cycles[0]
}

// LTV returns the engagement's lifetime value: the manual entry, or the sum
// of realized transactions when the derived toggle is on.
func (e *Engagement) LTV() int64 {
	if !e.LTVDerived {
		return e.LTVManual
	}
	var sum int64
	for _, tx := range e.Transactions {
		sum += tx.Amount
	}
	return sum
}

// RecordTransaction appends a realized transaction.
func (e *Engagement) RecordTransaction(amount int64, note string, at time.Time) Transaction {
	tx := Transaction{ID: uuid.New(), Amount: amount, Note: note, At: at}
	e.Transactions = append(e.Transactions, tx)
	e.UpdatedAt = at
	return tx
}

// AppendContractEvent records a change to the commercial agreement.
func (e *Engagement) AppendContractEvent(reason ContractReason, value int64, note string, at time.Time) {
	e.ContractHistory = append(e.ContractHistory, ContractEvent{
		ID:     uuid.New(),
		Reason: reason,
		Value:  value,
		Note:   note,
		At:     at,
	})
}

// Renegotiate updates the current contract and logs a Renegotiation entry.
func (e *Engagement) Renegotiate(value int64, startAt time.Time, endAt *time.Time, note string, at time.Time) {
	e.Contract = Contract{Value: value, StartAt: startAt, EndAt: endAt}
	e.AppendContractEvent(ReasonRenegotiation, value, note, at)
	e.UpdatedAt = at
}

// NewOnboarding creates an engagement at the start of the onboarding flow.
func NewOnboarding(name string, contact Contact, checklist []string, at time.Time) *Engagement {
	e := &Engagement{
		ID:                  uuid.New(),
		Name:                name,
		Contact:             contact,
		LifecycleStage:      LifecycleOnboarding,
		InternalStatus:      StatusCalm,
		OnboardingChecklist: CloneChecklist(checklist),
		Cycles:              []Cycle{},
		Projects:            []Project{},
		ContractHistory:     []ContractEvent{},
		Transactions:        []Transaction{},
		History:             []HistoryEntry{},
		CreatedAt:           at,
		UpdatedAt:           at,
	}
	e.AppendHistory("Engagement created", at)
	return e
}
