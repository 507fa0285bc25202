// Package adapters bridges bounded contexts: each adapter implements one
// context's consumer-driven port on top of another context's service, keeping
// the contexts themselves free of direct cross-imports.
package adapters

import (
	"context"

	catalogsvc "clientdesk_backend/internal/catalog/service"
	engdomain "clientdesk_backend/internal/engagements/domain"
	engports "clientdesk_backend/internal/engagements/ports"
	engsvc "clientdesk_backend/internal/engagements/service"
	oppdomain "clientdesk_backend/internal/opportunities/domain"
	oppports "clientdesk_backend/internal/opportunities/ports"

	"github.com/google/uuid"
)

// StageCatalogAdapter implements opportunities/ports.StageCatalogReader on
// top of the catalog service.
type StageCatalogAdapter struct {
	catalog *catalogsvc.Service
}

func NewStageCatalogAdapter(catalog *catalogsvc.Service) *StageCatalogAdapter {
	return &StageCatalogAdapter{catalog: catalog}
}

func (a *StageCatalogAdapter) StageCatalog(ctx context.Context) (oppdomain.StageCatalog, error) {
	stages, err := a.catalog.Stages(ctx)
	if err != nil {
		return nil, err
	}

	out := make(oppdomain.StageCatalog, 0, len(stages))
	for _, s := range stages {
		out = append(out, oppdomain.Stage{
			ID:           s.ID,
			Key:          s.Key,
			Name:         s.Name,
			DisplayOrder: s.DisplayOrder,
			Won:          s.Won,
		})
	}
	return out, nil
}

var _ oppports.StageCatalogReader = (*StageCatalogAdapter)(nil)

// WinConverterAdapter implements opportunities/ports.WinConverter by handing
// the won opportunity to the engagements service.
type WinConverterAdapter struct {
	engagements *engsvc.Service
}

func NewWinConverterAdapter(engagements *engsvc.Service) *WinConverterAdapter {
	return &WinConverterAdapter{engagements: engagements}
}

func (a *WinConverterAdapter) ConvertWon(ctx context.Context, opp oppdomain.Opportunity) (oppports.ConversionResult, error) {
	outcome, err := a.engagements.ConvertWonOpportunity(ctx, engsvc.ConversionInput{
		OpportunityID: opp.ID,
		ClientID:      opp.ClientID,
		Title:         opp.Title,
		Value:         opp.Value,
		TargetCloseAt: opp.TargetCloseAt,
		Contact: engdomain.Contact{
			Name:   opp.Contact.Name,
			Phone:  opp.Contact.Phone,
			Email:  opp.Contact.Email,
			Social: opp.Contact.Social,
		},
		ServiceTypeID: opp.ServiceTypeID,
	})
	if err != nil {
		return oppports.ConversionResult{}, err
	}

	return oppports.ConversionResult{
		EngagementID: outcome.EngagementID,
		Created:      outcome.Created,
		Warning:      outcome.Warning,
	}, nil
}

var _ oppports.WinConverter = (*WinConverterAdapter)(nil)

// ServiceTemplateAdapter implements engagements/ports.ServiceTemplateReader
// on top of the catalog service.
type ServiceTemplateAdapter struct {
	catalog *catalogsvc.Service
}

func NewServiceTemplateAdapter(catalog *catalogsvc.Service) *ServiceTemplateAdapter {
	return &ServiceTemplateAdapter{catalog: catalog}
}

func (a *ServiceTemplateAdapter) ServiceTemplate(ctx context.Context, id uuid.UUID) (engports.ServiceTemplate, error) {
	st, err := a.catalog.ServiceTypeByID(ctx, id)
	if err != nil {
		return engports.ServiceTemplate{}, err
	}
	return engports.ServiceTemplate{
		Name:             st.Name,
		Relationship:     st.Relationship,
		DefaultChecklist: st.DefaultChecklist,
	}, nil
}

var _ engports.ServiceTemplateReader = (*ServiceTemplateAdapter)(nil)
