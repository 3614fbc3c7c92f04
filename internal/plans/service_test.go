package plans

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sheisgracious/mindwell/internal/plantypes"
	"github.com/sheisgracious/mindwell/internal/providers"
)

type fakeRepo struct {
	items map[string]TherapyPlan
	next  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]TherapyPlan)}
}

func (f *fakeRepo) Create(ctx context.Context, plan *TherapyPlan) error {
	f.next++
	plan.ID = string(rune('a' + f.next))
	f.items[plan.ID] = *plan
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*TherapyPlan, error) {
	plan, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &plan, nil
}

func (f *fakeRepo) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]TherapyPlan, error) {
	out := []TherapyPlan{}
	for _, plan := range f.items {
		if plan.PatientID == patientID && (filter.Status == "" || plan.Status == filter.Status) {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByProvider(ctx context.Context, providerID string, filter ListFilter) ([]TherapyPlan, error) {
	out := []TherapyPlan{}
	for _, plan := range f.items {
		if plan.ProviderID == providerID && (filter.Status == "" || plan.Status == filter.Status) {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id, status string) error {
	plan, ok := f.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	plan.Status = status
	f.items[id] = plan
	return nil
}

func (f *fakeRepo) CountByPlanType(ctx context.Context, planTypeID string) (int64, error) {
	var n int64
	for _, plan := range f.items {
		if plan.PlanTypeID == planTypeID {
			n++
		}
	}
	return n, nil
}

type fakePlanTypes struct {
	items map[string]plantypes.PlanType
}

func (f *fakePlanTypes) Get(ctx context.Context, id string) (plantypes.PlanType, error) {
	item, ok := f.items[id]
	if !ok {
		return plantypes.PlanType{}, plantypes.ErrNotFound
	}
	return item, nil
}

type fakeProviders struct {
	ids map[string]bool
}

func (f *fakeProviders) Get(ctx context.Context, id string) (providers.Provider, error) {
	if !f.ids[id] {
		return providers.Provider{}, providers.ErrNotFound
	}
	return providers.Provider{ID: id}, nil
}

func newTestService() (*Service, *fakeRepo, *fakePlanTypes) {
	repo := newFakeRepo()
	pts := &fakePlanTypes{items: map[string]plantypes.PlanType{
		"pt1": {ID: "pt1", Name: "CBT", BaseCost: 12000, IsActive: true, ProviderIDs: []string{"prov1"}},
		"pt2": {ID: "pt2", Name: "Retired", BaseCost: 8000, IsActive: false, ProviderIDs: []string{"prov1"}},
	}}
	provs := &fakeProviders{ids: map[string]bool{"prov1": true, "prov2": true}}
	return NewService(repo, pts, provs), repo, pts
}

func TestCreateCopiesCostFromPlanType(t *testing.T) {
	svc, _, _ := newTestService()
	plan, err := svc.Create(context.Background(), "pat1", CreateRequest{ProviderID: "prov1", PlanTypeID: "pt1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Cost != 12000 {
		t.Fatalf("expected cost snapshot 12000, got %d", plan.Cost)
	}
	if plan.Status != StatusActive {
		t.Fatalf("expected new plan active, got %s", plan.Status)
	}
}

func TestCreateRejectsUnsupportedProvider(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), "pat1", CreateRequest{ProviderID: "prov2", PlanTypeID: "pt1"})
	if !errors.Is(err, ErrPlanTypeNotSupported) {
		t.Fatalf("expected ErrPlanTypeNotSupported, got %v", err)
	}
}

func TestCreateRejectsInactivePlanType(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), "pat1", CreateRequest{ProviderID: "prov1", PlanTypeID: "pt2"})
	if !errors.Is(err, ErrPlanTypeInactive) {
		t.Fatalf("expected ErrPlanTypeInactive, got %v", err)
	}
}

func TestCreateRejectsUnknownProvider(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), "pat1", CreateRequest{ProviderID: "ghost", PlanTypeID: "pt1"})
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestGetForPartyRejectsStrangers(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	plan, err := svc.Create(ctx, "pat1", CreateRequest{ProviderID: "prov1", PlanTypeID: "pt1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetForParty(ctx, plan.ID, "", "pat1"); err != nil {
		t.Fatalf("patient party rejected: %v", err)
	}
	if _, err := svc.GetForParty(ctx, plan.ID, "prov1", ""); err != nil {
		t.Fatalf("provider party rejected: %v", err)
	}
	if _, err := svc.GetForParty(ctx, plan.ID, "prov9", "pat9"); !errors.Is(err, ErrNotParty) {
		t.Fatalf("expected ErrNotParty, got %v", err)
	}
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	plan, err := svc.Create(ctx, "pat1", CreateRequest{ProviderID: "prov1", PlanTypeID: "pt1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, plan.ID, "", "pat1", StatusActive)
	if err != nil {
		t.Fatalf("same-status update: %v", err)
	}
	if updated.Status != StatusActive {
		t.Fatalf("unexpected status %s", updated.Status)
	}

	updated, err = svc.UpdateStatus(ctx, plan.ID, "", "pat1", StatusPaused)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if updated.Status != StatusPaused {
		t.Fatalf("expected paused, got %s", updated.Status)
	}
}
