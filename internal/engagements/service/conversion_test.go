package service

import (
	"context"
	"testing"
	"time"

	"clientdesk_backend/internal/engagements/domain"
	"clientdesk_backend/internal/engagements/ports"
	"clientdesk_backend/internal/engagements/repository"
	"clientdesk_backend/internal/events"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"

	"github.com/google/uuid"
)

var testTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	items map[uuid.UUID]domain.Engagement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]domain.Engagement)}
}

func (r *fakeRepo) Load(_ context.Context, id uuid.UUID) (domain.Engagement, error) {
	eng, ok := r.items[id]
	if !ok {
		return domain.Engagement{}, repository.ErrNotFound
	}
	return eng, nil
}

func (r *fakeRepo) FindBySourceOpportunity(_ context.Context, opportunityID uuid.UUID) (domain.Engagement, error) {
	for _, eng := range r.items {
		if eng.SourceOpportunityID != nil && *eng.SourceOpportunityID == opportunityID {
			return eng, nil
		}
	}
	return domain.Engagement{}, repository.ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, eng *domain.Engagement) error {
	eng.Version = 1
	r.items[eng.ID] = *eng
	return nil
}

func (r *fakeRepo) Save(_ context.Context, eng *domain.Engagement) error {
	if _, ok := r.items[eng.ID]; !ok {
		return repository.ErrNotFound
	}
	eng.Version++
	r.items[eng.ID] = *eng
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]domain.Engagement, error) {
	out := make([]domain.Engagement, 0, len(r.items))
	for _, eng := range r.items {
		out = append(out, eng)
	}
	return out, nil
}

type fakeTemplates struct {
	templates map[uuid.UUID]ports.ServiceTemplate
}

func (f fakeTemplates) ServiceTemplate(_ context.Context, id uuid.UUID) (ports.ServiceTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return ports.ServiceTemplate{}, repository.ErrNotFound
	}
	return tpl, nil
}

func testService(t *testing.T, repo *fakeRepo, templates ports.ServiceTemplateReader) *Service {
	t.Helper()
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, templates, nil, bus, clock.At(testTime), log, "US")
}

func TestConvertCreatesActiveEngagement(t *testing.T) {
	repo := newFakeRepo()
	serviceTypeID := uuid.New()
	templates := fakeTemplates{templates: map[uuid.UUID]ports.ServiceTemplate{
		serviceTypeID: {Name: "SEO retainer", Relationship: "Recurring", DefaultChecklist: []string{"Monthly report"}},
	}}
	svc := testService(t, repo, templates)

	outcome, err := svc.ConvertWonOpportunity(context.Background(), ConversionInput{
		OpportunityID: uuid.New(),
		Title:         "Acme retainer",
		Value:         500000,
		Contact:       domain.Contact{Name: "Jo Smith"},
		ServiceTypeID: &serviceTypeID,
	})
	if err != nil {
		t.Fatalf("ConvertWonOpportunity returned error: %v", err)
	}
	if !outcome.Created {
		t.Fatal("conversion without a client must create an engagement")
	}
	if outcome.Warning != "" {
		t.Fatalf("unexpected warning: %q", outcome.Warning)
	}

	eng := repo.items[outcome.EngagementID]
	if eng.LifecycleStage != domain.LifecycleActive {
		t.Fatalf("stage = %q, want active", eng.LifecycleStage)
	}
	if eng.Contract.Value != 500000 {
		t.Fatalf("contract value = %d", eng.Contract.Value)
	}
	if len(eng.Cycles) != 1 || len(eng.Cycles[0].Checklist) != 1 {
		t.Fatal("engagement must start with one cycle seeded from the template")
	}
}

func TestConvertIsIdempotentAcrossRetries(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})
	in := ConversionInput{
		OpportunityID: uuid.New(),
		Title:         "Acme retainer",
		Value:         500000,
		Contact:       domain.Contact{Name: "Jo Smith"},
	}

	first, err := svc.ConvertWonOpportunity(context.Background(), in)
	if err != nil {
		t.Fatalf("first conversion returned error: %v", err)
	}

	// The opportunity's client link was never saved; the retry arrives with
	// the same unresolved input.
	second, err := svc.ConvertWonOpportunity(context.Background(), in)
	if err != nil {
		t.Fatalf("second conversion returned error: %v", err)
	}

	if second.EngagementID != first.EngagementID {
		t.Fatal("retry must find the engagement from the first conversion")
	}
	if second.Created {
		t.Fatal("retry must not report a new engagement")
	}
	if len(repo.items) != 1 {
		t.Fatalf("engagements = %d, want exactly 1", len(repo.items))
	}
}

func TestConvertDegradesOnDanglingServiceType(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})
	missing := uuid.New()

	outcome, err := svc.ConvertWonOpportunity(context.Background(), ConversionInput{
		OpportunityID: uuid.New(),
		Title:         "Acme retainer",
		Value:         500000,
		Contact:       domain.Contact{Name: "Jo Smith"},
		ServiceTypeID: &missing,
	})
	if err != nil {
		t.Fatalf("dangling service reference must not fail the conversion: %v", err)
	}
	if outcome.Warning == "" {
		t.Fatal("degraded conversion must carry a warning")
	}

	eng := repo.items[outcome.EngagementID]
	if eng.LifecycleStage != domain.LifecycleActive {
		t.Fatal("degraded conversion must still produce an active engagement")
	}
	if len(eng.Cycles) != 1 || len(eng.Cycles[0].Checklist) != 0 {
		t.Fatal("degraded conversion falls back to an empty checklist template")
	}
}

func TestConvertAppendsProjectForResolvedClient(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})

	existing := domain.NewOnboarding("Acme Co", domain.Contact{Name: "Jo"}, nil, testTime)
	_ = existing.CompleteOnboarding(domain.RelationshipRecurring, false, testTime)
	existing.Version = 1
	repo.items[existing.ID] = *existing

	due := testTime.AddDate(0, 1, 0)
	oppID := uuid.New()
	outcome, err := svc.ConvertWonOpportunity(context.Background(), ConversionInput{
		OpportunityID: oppID,
		ClientID:      &existing.ID,
		Title:         "Upsell: site rebuild",
		Value:         250000,
		TargetCloseAt: &due,
		Contact:       domain.Contact{Name: "Jo"},
	})
	if err != nil {
		t.Fatalf("ConvertWonOpportunity returned error: %v", err)
	}
	if outcome.Created {
		t.Fatal("resolved client must get a project, not a new engagement")
	}
	if outcome.EngagementID != existing.ID {
		t.Fatal("project must land on the linked engagement")
	}

	eng := repo.items[existing.ID]
	if len(eng.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(eng.Projects))
	}
	p := eng.Projects[0]
	if p.Title != "Upsell: site rebuild" || p.Value != 250000 || p.Status != domain.ProjectInProgress {
		t.Fatalf("project = %+v", p)
	}
	if p.DueAt == nil || !p.DueAt.Equal(due) {
		t.Fatal("project due date must come from the opportunity target close date")
	}
}

func TestConvertProjectAppendIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})

	existing := domain.NewOnboarding("Acme Co", domain.Contact{Name: "Jo"}, nil, testTime)
	_ = existing.CompleteOnboarding(domain.RelationshipRecurring, false, testTime)
	existing.Version = 1
	repo.items[existing.ID] = *existing

	in := ConversionInput{
		OpportunityID: uuid.New(),
		ClientID:      &existing.ID,
		Title:         "Upsell: site rebuild",
		Value:         250000,
		Contact:       domain.Contact{Name: "Jo"},
	}

	if _, err := svc.ConvertWonOpportunity(context.Background(), in); err != nil {
		t.Fatalf("first conversion returned error: %v", err)
	}
	if _, err := svc.ConvertWonOpportunity(context.Background(), in); err != nil {
		t.Fatalf("second conversion returned error: %v", err)
	}

	eng := repo.items[existing.ID]
	if len(eng.Projects) != 1 {
		t.Fatalf("projects = %d, want 1 (retry must not duplicate the project)", len(eng.Projects))
	}
}

func TestConvertDanglingClientRetryConverges(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})

	ghost := uuid.New()
	in := ConversionInput{
		OpportunityID: uuid.New(),
		ClientID:      &ghost,
		Title:         "Orphaned deal",
		Value:         100000,
		Contact:       domain.Contact{Name: "Sam"},
	}

	first, err := svc.ConvertWonOpportunity(context.Background(), in)
	if err != nil {
		t.Fatalf("first conversion returned error: %v", err)
	}

	// The relink was never saved; the retry still carries the ghost reference.
	second, err := svc.ConvertWonOpportunity(context.Background(), in)
	if err != nil {
		t.Fatalf("second conversion returned error: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("engagements = %d, want 1 (retry must not duplicate the repair)", len(repo.items))
	}
	if second.EngagementID != first.EngagementID {
		t.Fatal("retry must converge on the engagement from the first repair")
	}
	if second.Created {
		t.Fatal("retry must not report a new engagement")
	}
	if second.Warning == "" {
		t.Fatal("converged repair must still carry a warning")
	}
}

func TestConvertRepairsDanglingClientReference(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, fakeTemplates{})

	ghost := uuid.New()
	outcome, err := svc.ConvertWonOpportunity(context.Background(), ConversionInput{
		OpportunityID: uuid.New(),
		ClientID:      &ghost,
		Title:         "Orphaned deal",
		Value:         100000,
		Contact:       domain.Contact{Name: "Sam"},
	})
	if err != nil {
		t.Fatalf("dangling client reference must not fail the conversion: %v", err)
	}
	if !outcome.Created {
		t.Fatal("repair path must create a new engagement")
	}
	if outcome.Warning == "" {
		t.Fatal("repair path must carry a warning")
	}
}
