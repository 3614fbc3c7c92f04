package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/sheisgracious/mindwell/internal/booking"
	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/providers"
)

type fakePlans struct {
	byPatient  map[string][]plans.TherapyPlan
	byProvider map[string][]plans.TherapyPlan
}

func (f *fakePlans) ListByPatient(ctx context.Context, patientID string, filter plans.ListFilter) ([]plans.TherapyPlan, error) {
	return filterPlans(f.byPatient[patientID], filter), nil
}

func (f *fakePlans) ListByProvider(ctx context.Context, providerID string, filter plans.ListFilter) ([]plans.TherapyPlan, error) {
	return filterPlans(f.byProvider[providerID], filter), nil
}

func filterPlans(items []plans.TherapyPlan, filter plans.ListFilter) []plans.TherapyPlan {
	if filter.Status == "" {
		return items
	}
	out := []plans.TherapyPlan{}
	for _, plan := range items {
		if plan.Status == filter.Status {
			out = append(out, plan)
		}
	}
	return out
}

type fakeSessions struct {
	upcoming []booking.Session
	past     []booking.Session
	today    []booking.Session
}

func (f *fakeSessions) ListUpcomingByPatient(ctx context.Context, patientID, fromDate string) ([]booking.Session, error) {
	return f.upcoming, nil
}

func (f *fakeSessions) ListPastByPatient(ctx context.Context, patientID, beforeDate string, limit int64) ([]booking.Session, error) {
	if limit > 0 && int64(len(f.past)) > limit {
		return f.past[:limit], nil
	}
	return f.past, nil
}

func (f *fakeSessions) ListUpcomingByProvider(ctx context.Context, providerID, fromDate string) ([]booking.Session, error) {
	return f.upcoming, nil
}

func (f *fakeSessions) ListByProviderOnDate(ctx context.Context, providerID, date string) ([]booking.Session, error) {
	out := []booking.Session{}
	for _, s := range f.today {
		if s.SessionDate == date && s.Status == booking.StatusScheduled {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeUnread struct {
	counts map[string]int64
}

func (f *fakeUnread) Unread(ctx context.Context, accountID string) (int64, error) {
	return f.counts[accountID], nil
}

func TestForPatientSplitsActivePlans(t *testing.T) {
	planSource := &fakePlans{byPatient: map[string][]plans.TherapyPlan{
		"pat1": {
			{ID: "p1", Status: plans.StatusActive},
			{ID: "p2", Status: plans.StatusCompleted},
			{ID: "p3", Status: plans.StatusActive},
		},
	}}
	sessions := &fakeSessions{
		upcoming: []booking.Session{{ID: "s1"}},
		past:     []booking.Session{{ID: "s2"}, {ID: "s3"}, {ID: "s4"}},
	}
	unread := &fakeUnread{counts: map[string]int64{"acct1": 4}}

	svc := NewService(planSource, sessions, unread, time.UTC, 2)
	result, err := svc.ForPatient(context.Background(), "acct1", patients.Patient{ID: "pat1"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(result.ActivePlans) != 2 {
		t.Fatalf("expected 2 active plans, got %d", len(result.ActivePlans))
	}
	if len(result.Plans) != 3 {
		t.Fatalf("expected 3 plans total, got %d", len(result.Plans))
	}
	if len(result.PastSessions) != 2 {
		t.Fatalf("expected past sessions capped at 2, got %d", len(result.PastSessions))
	}
	if result.UnreadMessages != 4 {
		t.Fatalf("expected 4 unread, got %d", result.UnreadMessages)
	}
}

func TestForProviderUsesActiveFilter(t *testing.T) {
	planSource := &fakePlans{byProvider: map[string][]plans.TherapyPlan{
		"prov1": {
			{ID: "p1", Status: plans.StatusActive},
			{ID: "p2", Status: plans.StatusCancelled},
		},
	}}
	date := time.Now().UTC().Format("2006-01-02")
	sessions := &fakeSessions{
		today: []booking.Session{
			{ID: "s1", SessionDate: date, Status: booking.StatusScheduled},
			{ID: "s2", SessionDate: date, Status: booking.StatusScheduled},
			{ID: "s3", SessionDate: date, Status: booking.StatusCancelled},
			{ID: "s4", SessionDate: date, Status: booking.StatusCompleted},
		},
		upcoming: []booking.Session{{ID: "s1"}, {ID: "s2"}, {ID: "s5"}},
	}
	unread := &fakeUnread{counts: map[string]int64{}}

	svc := NewService(planSource, sessions, unread, time.UTC, 5)
	result, err := svc.ForProvider(context.Background(), "acct1", providers.Provider{ID: "prov1"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(result.ActivePlans) != 1 {
		t.Fatalf("expected 1 active plan, got %d", len(result.ActivePlans))
	}
	// A session finished or cancelled earlier in the day no longer counts as
	// one of today's sessions.
	if len(result.TodaySessions) != 2 {
		t.Fatalf("expected 2 sessions today, got %d", len(result.TodaySessions))
	}
	for _, s := range result.TodaySessions {
		if s.Status != booking.StatusScheduled {
			t.Fatalf("expected only scheduled sessions today, got %s", s.Status)
		}
	}
	if len(result.UpcomingSessions) != 3 {
		t.Fatalf("expected 3 upcoming sessions, got %d", len(result.UpcomingSessions))
	}
}
