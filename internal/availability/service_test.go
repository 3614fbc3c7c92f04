package availability

import (
	"context"
	"sort"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	items map[string]Availability
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]Availability)}
}

func (f *fakeRepo) Create(ctx context.Context, item Availability) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (Availability, error) {
	item, ok := f.items[id]
	if !ok {
		return Availability{}, mongo.ErrNoDocuments
	}
	return item, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeRepo) ListForDay(ctx context.Context, providerID, day string) ([]Availability, error) {
	out := make([]Availability, 0)
	for _, item := range f.items {
		if item.ProviderID == providerID && item.DayOfWeek == day && item.IsAvailable {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeRepo) ListByProvider(ctx context.Context, providerID string) ([]Availability, error) {
	out := make([]Availability, 0)
	for _, item := range f.items {
		if item.ProviderID == providerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func boolPtr(b bool) *bool { return &b }

func TestAddRejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Add(context.Background(), "p1", CreateRequest{
		DayOfWeek: "monday",
		StartTime: "12:00",
		EndTime:   "09:00",
	})
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestAddRejectsBadDay(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Add(context.Background(), "p1", CreateRequest{
		DayOfWeek: "funday",
		StartTime: "09:00",
		EndTime:   "12:00",
	})
	if err != ErrInvalidDay {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestWindowsForDaySkipsClosedWindows(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "p1", CreateRequest{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "p1", CreateRequest{DayOfWeek: "monday", StartTime: "14:00", EndTime: "17:00", IsAvailable: boolPtr(false)}); err != nil {
		t.Fatalf("add: %v", err)
	}

	windows, err := svc.WindowsForDay(ctx, "p1", "monday")
	if err != nil {
		t.Fatalf("WindowsForDay error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 open window, got %d", len(windows))
	}
	if windows[0].StartTime != "09:00" {
		t.Fatalf("unexpected window: %+v", windows[0])
	}
}

func TestByDayGroupsInCalendarOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, req := range []CreateRequest{
		{DayOfWeek: "friday", StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: "monday", StartTime: "14:00", EndTime: "17:00"},
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00"},
	} {
		if _, err := svc.Add(ctx, "p1", req); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	byDay, err := svc.ByDay(ctx, "p1")
	if err != nil {
		t.Fatalf("ByDay error: %v", err)
	}
	if len(byDay) != 2 {
		t.Fatalf("expected 2 days, got %d", len(byDay))
	}
	if byDay[0].Day != "monday" || byDay[1].Day != "friday" {
		t.Fatalf("unexpected day order: %s, %s", byDay[0].Day, byDay[1].Day)
	}
	if len(byDay[0].Slots) != 2 || byDay[0].Slots[0].StartTime != "09:00" {
		t.Fatalf("monday slots not ordered by start time: %+v", byDay[0].Slots)
	}
}

func TestListOwnOrdersByCalendarDay(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// Out of calendar order on insert; wednesday would sort before monday
	// lexicographically.
	for _, req := range []CreateRequest{
		{DayOfWeek: "wednesday", StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: "monday", StartTime: "14:00", EndTime: "17:00"},
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00", IsAvailable: boolPtr(false)},
		{DayOfWeek: "sunday", StartTime: "10:00", EndTime: "11:00"},
	} {
		if _, err := svc.Add(ctx, "p1", req); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	items, err := svc.ListOwn(ctx, "p1")
	if err != nil {
		t.Fatalf("ListOwn error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected all 4 windows including closed, got %d", len(items))
	}
	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.DayOfWeek+" "+item.StartTime)
	}
	want := []string{"monday 09:00", "monday 14:00", "wednesday 09:00", "sunday 10:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
	if items[0].IsAvailable {
		t.Fatalf("expected closed monday 09:00 window to be listed as closed")
	}
}

func TestRemoveEnforcesOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	item, err := svc.Add(ctx, "p1", CreateRequest{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Remove(ctx, "p2", item.ID); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Remove(ctx, "p1", item.ID); err != nil {
		t.Fatalf("owner remove failed: %v", err)
	}
	if err := svc.Remove(ctx, "p1", item.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
