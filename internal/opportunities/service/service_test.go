package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"clientdesk_backend/internal/events"
	"clientdesk_backend/internal/opportunities/domain"
	"clientdesk_backend/internal/opportunities/ports"
	"clientdesk_backend/internal/opportunities/repository"
	"clientdesk_backend/platform/apperr"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	items map[uuid.UUID]domain.Opportunity
	// failSave makes every Save return the given error.
	failSave error
	saves    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]domain.Opportunity)}
}

func (r *fakeRepo) Load(_ context.Context, id uuid.UUID) (domain.Opportunity, error) {
	opp, ok := r.items[id]
	if !ok {
		return domain.Opportunity{}, repository.ErrNotFound
	}
	return opp, nil
}

func (r *fakeRepo) Create(_ context.Context, opp *domain.Opportunity) error {
	opp.Version = 1
	r.items[opp.ID] = *opp
	return nil
}

func (r *fakeRepo) Save(_ context.Context, opp *domain.Opportunity) error {
	if r.failSave != nil {
		return r.failSave
	}
	if _, ok := r.items[opp.ID]; !ok {
		return repository.ErrNotFound
	}
	opp.Version++
	r.items[opp.ID] = *opp
	r.saves++
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]domain.Opportunity, error) {
	out := make([]domain.Opportunity, 0, len(r.items))
	for _, opp := range r.items {
		out = append(out, opp)
	}
	return out, nil
}

type fakeStages struct {
	catalog domain.StageCatalog
}

func (f fakeStages) StageCatalog(context.Context) (domain.StageCatalog, error) {
	return f.catalog, nil
}

type fakeConverter struct {
	result ports.ConversionResult
	err    error
	calls  int
	lastIn domain.Opportunity
}

func (f *fakeConverter) ConvertWon(_ context.Context, opp domain.Opportunity) (ports.ConversionResult, error) {
	f.calls++
	f.lastIn = opp
	if f.err != nil {
		return ports.ConversionResult{}, f.err
	}
	return f.result, nil
}

var testTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testService(t *testing.T, repo *fakeRepo, converter *fakeConverter) *Service {
	t.Helper()
	catalog := domain.StageCatalog{
		{ID: uuid.New(), Key: "new_lead", Name: "New Lead", DisplayOrder: 1},
		{ID: uuid.New(), Key: "contacted", Name: "Contacted", DisplayOrder: 2},
		{ID: uuid.New(), Key: "won", Name: "Won", DisplayOrder: 3, Won: true},
	}
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, fakeStages{catalog}, converter, bus, clock.At(testTime), log, "US")
}

func seedOpportunity(repo *fakeRepo, stage string) domain.Opportunity {
	opp := domain.New("Acme redesign", 500000, stage, testTime)
	opp.Version = 1
	repo.items[opp.ID] = *opp
	return *opp
}

func TestTransitionRejectsUnknownTarget(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "new_lead")
	svc := testService(t, repo, &fakeConverter{})

	_, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "archived"})
	if apperr.GetCode(err) != apperr.CodeInvalidTarget {
		t.Fatalf("code = %q, want %q (err: %v)", apperr.GetCode(err), apperr.CodeInvalidTarget, err)
	}
	if repo.items[opp.ID].StageKey != "new_lead" {
		t.Fatal("rejected transition must not mutate the opportunity")
	}
}

func TestTransitionToCurrentStageIsNoop(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "contacted")
	svc := testService(t, repo, &fakeConverter{})

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "contacted"})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if result.Changed {
		t.Fatal("same-stage transition must report Changed=false")
	}
	if repo.saves != 0 {
		t.Fatalf("saves = %d, want 0 for a no-op", repo.saves)
	}
}

func TestTransitionNextAdvancesOneStage(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "new_lead")
	svc := testService(t, repo, &fakeConverter{})

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{Next: true})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if !result.Changed || result.Opportunity.StageKey != "contacted" {
		t.Fatalf("stage = %q changed=%v, want contacted/true", result.Opportunity.StageKey, result.Changed)
	}
}

func TestTransitionToWonRunsAutomationAndLinksClient(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "contacted")
	engagementID := uuid.New()
	converter := &fakeConverter{result: ports.ConversionResult{EngagementID: engagementID, Created: true}}
	svc := testService(t, repo, converter)

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if converter.calls != 1 {
		t.Fatalf("converter calls = %d, want 1", converter.calls)
	}
	if result.EngagementID == nil || *result.EngagementID != engagementID {
		t.Fatalf("EngagementID = %v, want %s", result.EngagementID, engagementID)
	}

	stored := repo.items[opp.ID]
	if stored.ClientID == nil || *stored.ClientID != engagementID {
		t.Fatal("won opportunity must be linked to the created engagement")
	}
	if result.AutomationWarning != "" {
		t.Fatalf("unexpected warning: %q", result.AutomationWarning)
	}
}

func TestTransitionToWonRepairsDanglingClientLink(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "contacted")
	ghost := uuid.New()
	stored := repo.items[opp.ID]
	stored.ClientID = &ghost
	repo.items[opp.ID] = stored

	engagementID := uuid.New()
	converter := &fakeConverter{result: ports.ConversionResult{
		EngagementID: engagementID,
		Created:      true,
		Warning:      "linked engagement " + ghost.String() + " not found; a new engagement was created",
	}}
	svc := testService(t, repo, converter)

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if result.AutomationWarning == "" {
		t.Fatal("repair warning must surface in the result")
	}

	got := repo.items[opp.ID]
	if got.ClientID == nil || *got.ClientID != engagementID {
		t.Fatalf("client link = %v, want repaired to %s", got.ClientID, engagementID)
	}
}

func TestTransitionToWonKeepsStageWhenAutomationFails(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "contacted")
	converter := &fakeConverter{err: context.DeadlineExceeded}
	svc := testService(t, repo, converter)

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("a degraded conversion must not fail the transition: %v", err)
	}
	if repo.items[opp.ID].StageKey != "won" {
		t.Fatal("transition must stay committed when automation fails")
	}
	if !strings.Contains(result.AutomationWarning, "win automation failed") {
		t.Fatalf("warning = %q", result.AutomationWarning)
	}
	if result.EngagementID != nil {
		t.Fatal("no engagement id when conversion failed entirely")
	}
}

func TestTransitionWonToWonDoesNotReconvert(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "won")
	converter := &fakeConverter{}
	svc := testService(t, repo, converter)

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if result.Changed {
		t.Fatal("won to won must be a no-op")
	}
	if converter.calls != 0 {
		t.Fatalf("converter calls = %d, want 0", converter.calls)
	}
}

func TestTransitionPassesWarningThrough(t *testing.T) {
	repo := newFakeRepo()
	opp := seedOpportunity(repo, "contacted")
	engagementID := uuid.New()
	converter := &fakeConverter{result: ports.ConversionResult{
		EngagementID: engagementID,
		Created:      true,
		Warning:      "service type not found; engagement created with an empty checklist template",
	}}
	svc := testService(t, repo, converter)

	result, err := svc.Transition(context.Background(), opp.ID, domain.TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if result.AutomationWarning == "" {
		t.Fatal("degraded conversion warning must surface in the result")
	}
	if result.EngagementID == nil || *result.EngagementID != engagementID {
		t.Fatal("engagement id must still be reported on a degraded conversion")
	}
}

func TestCreateStartsAtFirstStage(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeConverter{})

	opp, err := svc.Create(context.Background(), domain.Opportunity{
		Title:   "New prospect",
		Value:   120000,
		Contact: domain.Contact{Name: "Sam Lee"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if opp.StageKey != "new_lead" {
		t.Fatalf("StageKey = %q, want first catalog stage", opp.StageKey)
	}
	if opp.Probability != 0 {
		t.Fatalf("Probability = %d, want 0", opp.Probability)
	}
}

func TestCreateRejectsUnknownInitialStage(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(t, repo, &fakeConverter{})

	_, err := svc.Create(context.Background(), domain.Opportunity{
		Title:    "New prospect",
		Contact:  domain.Contact{Name: "Sam Lee"},
		StageKey: "archived",
	})
	if apperr.GetCode(err) != apperr.CodeInvalidTarget {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), apperr.CodeInvalidTarget)
	}
}
