package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/providers"
)

type fakeRepo struct {
	messages []Message
	next     int
}

func (f *fakeRepo) Insert(ctx context.Context, message *Message) error {
	f.next++
	message.ID = fmt.Sprintf("m%d", f.next)
	message.CreatedAt = time.Unix(int64(f.next), 0)
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeRepo) ListByPlan(ctx context.Context, planID string) ([]Message, error) {
	out := []Message{}
	for _, m := range f.messages {
		if m.PlanID == planID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, accountID string) ([]Message, error) {
	out := []Message{}
	for _, m := range f.messages {
		if m.SenderID == accountID || m.RecipientID == accountID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) CountUnread(ctx context.Context, accountID string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.RecipientID == accountID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) MarkAllRead(ctx context.Context, planID, recipientID string) (int64, error) {
	var n int64
	for i := range f.messages {
		if f.messages[i].PlanID == planID && f.messages[i].RecipientID == recipientID && !f.messages[i].IsRead {
			f.messages[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) MarkAllReadForUser(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	for i := range f.messages {
		if f.messages[i].RecipientID == recipientID && !f.messages[i].IsRead {
			f.messages[i].IsRead = true
			n++
		}
	}
	return n, nil
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

type fakeProviders struct{}

func (fakeProviders) Get(ctx context.Context, id string) (providers.Provider, error) {
	return providers.Provider{ID: id, UserID: "acct-" + id}, nil
}

type fakePatients struct{}

func (fakePatients) Get(ctx context.Context, id string) (patients.Patient, error) {
	return patients.Patient{ID: id, UserID: "acct-" + id}, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	planSource := &fakePlans{items: map[string]plans.TherapyPlan{
		"plan1": {ID: "plan1", ProviderID: "prov1", PatientID: "pat1", Status: plans.StatusActive},
		"plan2": {ID: "plan2", ProviderID: "prov1", PatientID: "pat2", Status: plans.StatusPaused},
	}}
	return NewService(repo, planSource, fakeProviders{}, fakePatients{}), repo
}

func TestSendDerivesRecipientFromPlan(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Patient writes, provider's account receives.
	msg, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.RecipientID != "acct-prov1" {
		t.Fatalf("expected recipient acct-prov1, got %s", msg.RecipientID)
	}

	// Provider replies, patient's account receives.
	msg, err = svc.Send(ctx, "acct-prov1", "prov1", "", "plan1", "hi there")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if msg.RecipientID != "acct-pat1" {
		t.Fatalf("expected recipient acct-pat1, got %s", msg.RecipientID)
	}
}

func TestSendAllowedOnPausedPlan(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Send(context.Background(), "acct-pat2", "", "pat2", "plan2", "still here"); err != nil {
		t.Fatalf("send on paused plan: %v", err)
	}
}

func TestSendRejectsStranger(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Send(context.Background(), "acct-pat9", "", "pat9", "plan1", "let me in")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Send(context.Background(), "acct-pat1", "", "pat1", "plan1", "   ")
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestConversationMarksCallerMessagesRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "second"); err != nil {
		t.Fatalf("send: %v", err)
	}

	before, err := svc.Unread(ctx, "acct-prov1")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if before != 2 {
		t.Fatalf("expected 2 unread before viewing, got %d", before)
	}

	messages, err := svc.Conversation(ctx, "acct-prov1", "prov1", "", "plan1")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Body != "first" {
		t.Fatalf("expected oldest first, got %s", messages[0].Body)
	}
	for _, m := range messages {
		if !m.IsRead {
			t.Fatalf("expected message %s marked read", m.ID)
		}
	}

	after, err := svc.Unread(ctx, "acct-prov1")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if after != 0 {
		t.Fatalf("expected 0 unread after viewing, got %d", after)
	}
}

func TestThreadsFoldNewestPerPlan(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "older"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "acct-pat2", "", "pat2", "plan2", "other plan"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "newer"); err != nil {
		t.Fatalf("send: %v", err)
	}

	threads, err := svc.Threads(ctx, "acct-prov1")
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].PlanID != "plan1" || threads[0].LastMessage.Body != "newer" {
		t.Fatalf("expected plan1 thread headed by newest message, got %+v", threads[0])
	}
	if threads[0].Unread != 2 {
		t.Fatalf("expected 2 unread in plan1 thread, got %d", threads[0].Unread)
	}
}

func TestThreadsClearUnreadAcrossPlans(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "acct-pat1", "", "pat1", "plan1", "checking in"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "acct-pat2", "", "pat2", "plan2", "question"); err != nil {
		t.Fatalf("send: %v", err)
	}

	threads, err := svc.Threads(ctx, "acct-prov1")
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	// The counts returned are the badges the view clears.
	if threads[0].Unread != 1 || threads[1].Unread != 1 {
		t.Fatalf("expected 1 unread per thread, got %d and %d", threads[0].Unread, threads[1].Unread)
	}

	after, err := svc.Unread(ctx, "acct-prov1")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if after != 0 {
		t.Fatalf("expected 0 unread after viewing threads, got %d", after)
	}
}
