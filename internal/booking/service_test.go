package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sheisgracious/mindwell/internal/cache"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/schedule"
)

// 2030-01-07 is a Monday, far enough out that these tests never trip the
// past-slot guard.
const monday = "2030-01-07"

type fakeSessions struct {
	items map[string]Session
	next  int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{items: make(map[string]Session)}
}

func (f *fakeSessions) Create(ctx context.Context, session *Session) error {
	f.next++
	session.ID = string(rune('a' + f.next))
	session.CreatedAt = time.Now()
	f.items[session.ID] = *session
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id string) (*Session, error) {
	session, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &session, nil
}

func (f *fakeSessions) Update(ctx context.Context, id string, set bson.M) (*Session, error) {
	session, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if status, ok := set["status"].(string); ok {
		session.Status = status
	}
	if payment, ok := set["payment_status"].(string); ok {
		session.PaymentStatus = payment
	}
	if notes, ok := set["notes"].(string); ok {
		session.Notes = notes
	}
	if followUp, ok := set["follow_up_required"].(bool); ok {
		session.FollowUpRequired = followUp
	}
	f.items[id] = session
	return &session, nil
}

func (f *fakeSessions) ReservedIntervals(ctx context.Context, providerID, date string) ([]schedule.Interval, error) {
	out := []schedule.Interval{}
	for _, session := range f.items {
		if session.ProviderID != providerID || session.SessionDate != date || session.Status != StatusScheduled {
			continue
		}
		start, err := schedule.ParseClockToMinutes(session.SessionTime)
		if err != nil {
			continue
		}
		out = append(out, schedule.Interval{Start: start, End: start + session.DurationMinutes})
	}
	return out, nil
}

func (f *fakeSessions) ListUpcomingByPatient(ctx context.Context, patientID, fromDate string) ([]Session, error) {
	return nil, nil
}

func (f *fakeSessions) ListUpcomingByProvider(ctx context.Context, providerID, fromDate string) ([]Session, error) {
	return nil, nil
}

func (f *fakeSessions) ListPastByPatient(ctx context.Context, patientID, beforeDate string, limit int64) ([]Session, error) {
	return nil, nil
}

func (f *fakeSessions) ListByProviderOnDate(ctx context.Context, providerID, date string) ([]Session, error) {
	return nil, nil
}

func (f *fakeSessions) ListByPlan(ctx context.Context, planID string) ([]Session, error) {
	out := []Session{}
	for _, session := range f.items {
		if session.PlanID == planID {
			out = append(out, session)
		}
	}
	return out, nil
}

type fakeWindows struct {
	// windows by weekday name
	byDay map[string][]schedule.Window
}

func (f *fakeWindows) Windows(ctx context.Context, providerID, day string) ([]schedule.Window, error) {
	return f.byDay[day], nil
}

type fakePlans struct {
	items map[string]plans.TherapyPlan
}

func (f *fakePlans) Get(ctx context.Context, id string) (*plans.TherapyPlan, error) {
	plan, ok := f.items[id]
	if !ok {
		return nil, plans.ErrNotFound
	}
	return &plan, nil
}

func mustWindow(t *testing.T, start, end string) schedule.Window {
	t.Helper()
	w, err := schedule.NewWindow(start, end)
	if err != nil {
		t.Fatalf("window %s-%s: %v", start, end, err)
	}
	return w
}

func newTestService(t *testing.T) (*Service, *fakeSessions) {
	t.Helper()
	sessions := newFakeSessions()
	windows := &fakeWindows{byDay: map[string][]schedule.Window{
		"monday": {mustWindow(t, "09:00", "12:00")},
	}}
	planSource := &fakePlans{items: map[string]plans.TherapyPlan{
		"plan1": {ID: "plan1", PatientID: "pat1", ProviderID: "prov1", Status: plans.StatusActive},
		"plan2": {ID: "plan2", PatientID: "pat1", ProviderID: "prov1", Status: plans.StatusPaused},
	}}
	engine := NewEngine(windows, sessions, time.UTC)
	svc := NewService(sessions, planSource, engine, cache.NewLocalLocker(), cache.NewNoop(), time.Minute, time.UTC, NopMetrics())
	return svc, sessions
}

func TestCreateSessionBooksFreeSlot(t *testing.T) {
	svc, _ := newTestService(t)
	session, err := svc.CreateSession(context.Background(), "pat1", "plan1", CreateRequest{
		SessionDate: monday,
		SessionTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", session.Status)
	}
	if session.PaymentStatus != PaymentUnpaid {
		t.Fatalf("expected unpaid, got %s", session.PaymentStatus)
	}
	if session.DurationMinutes != 60 {
		t.Fatalf("expected default 60 minutes, got %d", session.DurationMinutes)
	}
	if session.ProviderID != "prov1" || session.PatientID != "pat1" {
		t.Fatalf("party ids not copied from plan: %+v", session)
	}
}

func TestCreateSessionRejectsOverlap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:30"})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for overlapping slot, got %v", err)
	}

	// The freed adjacent slot right after the booked one is fine.
	if _, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "11:00"}); err != nil {
		t.Fatalf("adjacent booking: %v", err)
	}
}

func TestCreateSessionRejectsOutsideWindow(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "pat1", "plan1", CreateRequest{
		SessionDate: monday,
		SessionTime: "08:00",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable outside window, got %v", err)
	}
}

func TestCreateSessionRejectsSpillOver(t *testing.T) {
	svc, _ := newTestService(t)
	// 11:30 + 60min runs past the 12:00 close.
	_, err := svc.CreateSession(context.Background(), "pat1", "plan1", CreateRequest{
		SessionDate: monday,
		SessionTime: "11:30",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for spill-over, got %v", err)
	}
}

func TestCreateSessionRejectsPausedPlan(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "pat1", "plan2", CreateRequest{
		SessionDate: monday,
		SessionTime: "10:00",
	})
	if !errors.Is(err, ErrPlanNotActive) {
		t.Fatalf("expected ErrPlanNotActive, got %v", err)
	}
}

func TestCreateSessionRejectsWrongPatient(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "pat2", "plan1", CreateRequest{
		SessionDate: monday,
		SessionTime: "10:00",
	})
	if !errors.Is(err, ErrNotPlanPatient) {
		t.Fatalf("expected ErrNotPlanPatient, got %v", err)
	}
}

func TestCreateSessionRejectsPastDate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "pat1", "plan1", CreateRequest{
		SessionDate: "2020-01-06",
		SessionTime: "10:00",
	})
	if !errors.Is(err, ErrPastSlot) {
		t.Fatalf("expected ErrPastSlot, got %v", err)
	}
}

func TestCancellationFreesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled := StatusCancelled
	if _, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{Status: &cancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"}); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestUpdateSessionTerminalIsFinal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed := StatusCompleted
	if _, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{Status: &completed}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Repeating the same terminal status is an idempotent no-op.
	if _, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{Status: &completed}); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	cancelled := StatusCancelled
	if _, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{Status: &cancelled}); !errors.Is(err, ErrSessionFinal) {
		t.Fatalf("expected ErrSessionFinal switching terminal states, got %v", err)
	}

	scheduled := StatusScheduled
	if _, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{Status: &scheduled}); !errors.Is(err, ErrSessionFinal) {
		t.Fatalf("expected ErrSessionFinal reopening a final session, got %v", err)
	}
}

func TestUpdateSessionEnforcesProvider(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid := PaymentPaid
	if _, err := svc.UpdateSession(ctx, "prov2", session.ID, UpdateRequest{PaymentStatus: &paid}); !errors.Is(err, ErrNotSessionProvider) {
		t.Fatalf("expected ErrNotSessionProvider, got %v", err)
	}
	updated, err := svc.UpdateSession(ctx, "prov1", session.ID, UpdateRequest{PaymentStatus: &paid})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if updated.PaymentStatus != PaymentPaid {
		t.Fatalf("expected paid, got %s", updated.PaymentStatus)
	}
}

func TestFreeSlotsSkipsReserved(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, "pat1", "plan1", CreateRequest{SessionDate: monday, SessionTime: "10:00"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.FreeSlots(ctx, "prov1", monday, 60)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	want := []string{"09:00", "11:00"}
	if len(result.Slots) != len(want) {
		t.Fatalf("expected %v, got %v", want, result.Slots)
	}
	for i, slot := range want {
		if result.Slots[i] != slot {
			t.Fatalf("expected %v, got %v", want, result.Slots)
		}
	}
}
