package plantypes

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	items map[string]PlanType
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]PlanType)}
}

func (f *fakeRepo) Create(ctx context.Context, item PlanType) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, set bson.M) (PlanType, error) {
	item, ok := f.items[id]
	if !ok {
		return PlanType{}, mongo.ErrNoDocuments
	}
	if name, ok := set["name"].(string); ok {
		item.Name = name
	}
	if slug, ok := set["slug"].(string); ok {
		item.Slug = slug
	}
	f.items[id] = item
	return item, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (PlanType, error) {
	item, ok := f.items[id]
	if !ok {
		return PlanType{}, mongo.ErrNoDocuments
	}
	return item, nil
}

func (f *fakeRepo) FindBySlug(ctx context.Context, slug string) (PlanType, error) {
	for _, item := range f.items {
		if item.Slug == slug {
			return item, nil
		}
	}
	return PlanType{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]PlanType, error) {
	out := make([]PlanType, 0)
	for _, item := range f.items {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListForProvider(ctx context.Context, providerID string) ([]PlanType, error) {
	out := make([]PlanType, 0)
	for _, item := range f.items {
		if item.IsActive && item.Supports(providerID) {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) CountByPlanType(ctx context.Context, planTypeID string) (int64, error) {
	return f.counts[planTypeID], nil
}

func newService(repo Repository, counter PlanCounter) *Service {
	return NewService(repo, counter, time.UTC)
}

func TestCreateSetsSlug(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeCounter{counts: map[string]int64{}})
	item, err := svc.Create(context.Background(), UpsertRequest{Name: "Cognitive Behavioral Therapy", BaseCost: 12000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Slug != "cognitive-behavioral-therapy" {
		t.Fatalf("unexpected slug: %s", item.Slug)
	}
	if !item.IsActive {
		t.Fatalf("expected new plan type active by default")
	}
}

func TestDeleteProtectedWhileReferenced(t *testing.T) {
	repo := newFakeRepo()
	counter := &fakeCounter{counts: map[string]int64{}}
	svc := newService(repo, counter)
	ctx := context.Background()

	item, err := svc.Create(ctx, UpsertRequest{Name: "Family Therapy", BaseCost: 9000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.counts[item.ID] = 2
	if err := svc.Delete(ctx, item.ID); err != ErrInUse {
		t.Fatalf("expected ErrInUse, got %v", err)
	}

	counter.counts[item.ID] = 0
	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("unreferenced delete failed: %v", err)
	}
}

func TestSupports(t *testing.T) {
	item := PlanType{ProviderIDs: []string{"p1", "p2"}}
	if !item.Supports("p1") {
		t.Fatalf("expected p1 supported")
	}
	if item.Supports("p3") {
		t.Fatalf("expected p3 not supported")
	}
}
