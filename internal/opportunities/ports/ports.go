// Package ports defines the consumer-driven interfaces the opportunities
// context needs from other contexts. Adapters in internal/adapters implement
// them, keeping this module free of direct cross-context dependencies.
package ports

import (
	"context"

	"clientdesk_backend/internal/opportunities/domain"

	"github.com/google/uuid"
)

// ConversionResult reports what win automation did for a won opportunity.
type ConversionResult struct {
	// EngagementID is the engagement created or extended.
	EngagementID uuid.UUID
	// Created is true when a new engagement was created, false when a project
	// was appended to an existing one.
	Created bool
	// Warning is non-empty when automation degraded (e.g., a dangling service
	// reference); the conversion still happened in minimal form.
	Warning string
}

// WinConverter turns a won opportunity into an engagement, or appends a
// project to the engagement the opportunity already references.
type WinConverter interface {
	ConvertWon(ctx context.Context, opp domain.Opportunity) (ConversionResult, error)
}

// StageCatalogReader provides the ordered pipeline stage catalog.
type StageCatalogReader interface {
	StageCatalog(ctx context.Context) (domain.StageCatalog, error)
}
