package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversionSeed carries the opportunity data win automation hands over when
// a won prospect becomes a client.
type ConversionSeed struct {
	OpportunityID     uuid.UUID
	Title             string
	Value             int64
	TargetCloseAt     *time.Time
	Contact           Contact
	Relationship      RelationshipType
	ChecklistTemplate []string
}

// NewFromWonOpportunity builds the engagement for a freshly won opportunity
// with no existing client. The engagement is created directly active - not
// onboarding - with the contract value pre-filled from the opportunity and
// the checklist seeded from the intended service's template. A Recurring
// conversion opens the first cycle; a Project conversion seeds the first
// project instead. The source opportunity id is recorded so a repeated
// conversion can find this engagement instead of creating a second one.
func NewFromWonOpportunity(seed ConversionSeed, at time.Time) *Engagement {
	relationship := seed.Relationship
	if relationship == "" {
		relationship = RelationshipRecurring
	}

	oppID := seed.OpportunityID
	e := &Engagement{
		ID:               uuid.New(),
		Name:             seed.Contact.Name,
		Contact:          seed.Contact,
		LifecycleStage:   LifecycleActive,
		RelationshipType: relationship,
		InternalStatus:   StatusCalm,
		Recurring: RecurringSettings{
			BillingDay:       1,
			DefaultChecklist: append([]string(nil), seed.ChecklistTemplate...),
		},
		OnboardingChecklist: []ChecklistItem{},
		Cycles:              []Cycle{},
		Projects:            []Project{},
		Contract:            Contract{Value: seed.Value, StartAt: at},
		ContractHistory:     []ContractEvent{},
		Transactions:        []Transaction{},
		SourceOpportunityID: &oppID,
		History:             []HistoryEntry{},
		CreatedAt:           at,
		UpdatedAt:           at,
	}
	if e.Name == "" {
		e.Name = seed.Title
	}
	switch relationship {
	case RelationshipRecurring:
		e.Cycles = append(e.Cycles, NewCycle(PeriodLabel(at), seed.ChecklistTemplate, at))
	case RelationshipProject:
		p := Project{
			ID:           uuid.New(),
			Title:        seed.Title,
			Value:        seed.Value,
			Status:       ProjectInProgress,
			DueAt:        seed.TargetCloseAt,
			Checklist:    CloneChecklist(seed.ChecklistTemplate),
			Deliverables: []Deliverable{},
			CreatedAt:    at,
		}
		e.Projects = append(e.Projects, p)
	}
	e.AppendContractEvent(ReasonInitialAgreement, seed.Value, "Converted from won opportunity", at)
	e.AppendHistory("Engagement created from won opportunity", at)
	return e
}
