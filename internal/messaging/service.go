package messaging

import (
	"context"
	"errors"
	"strings"

	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/providers"
)

var (
	ErrPlanNotFound   = errors.New("therapy plan not found")
	ErrNotParticipant = errors.New("not a participant in this plan")
	ErrEmptyBody      = errors.New("message body is empty")
)

// PlanSource is the slice of the plans service messaging needs.
type PlanSource interface {
	Get(ctx context.Context, id string) (*plans.TherapyPlan, error)
}

// ProviderSource and PatientSource resolve profile ids to profiles so the
// recipient account can be derived from the plan.
type ProviderSource interface {
	Get(ctx context.Context, id string) (providers.Provider, error)
}

type PatientSource interface {
	Get(ctx context.Context, id string) (patients.Patient, error)
}

type Service struct {
	repo      Repository
	plans     PlanSource
	providers ProviderSource
	patients  PatientSource
}

func NewService(repo Repository, planSource PlanSource, prov ProviderSource, pat PatientSource) *Service {
	return &Service{
		repo:      repo,
		plans:     planSource,
		providers: prov,
		patients:  pat,
	}
}

// participant returns the recipient account for a sender who is a party to
// the plan, or ErrNotParticipant.
func (s *Service) participant(ctx context.Context, plan *plans.TherapyPlan, providerID, patientID string) (string, error) {
	switch {
	case providerID != "" && plan.ProviderID == providerID:
		patient, err := s.patients.Get(ctx, plan.PatientID)
		if err != nil {
			return "", err
		}
		return patient.UserID, nil
	case patientID != "" && plan.PatientID == patientID:
		provider, err := s.providers.Get(ctx, plan.ProviderID)
		if err != nil {
			return "", err
		}
		return provider.UserID, nil
	default:
		return "", ErrNotParticipant
	}
}

// Send posts a message on a plan from the calling account to the other
// party. Either party may write regardless of plan status so a paused plan
// can still be discussed.
func (s *Service) Send(ctx context.Context, accountID, providerID, patientID, planID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	recipient, err := s.participant(ctx, plan, providerID, patientID)
	if err != nil {
		return nil, err
	}

	message := &Message{
		PlanID:      plan.ID,
		SenderID:    accountID,
		RecipientID: recipient,
		Body:        body,
	}
	if err := s.repo.Insert(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation returns a plan's messages oldest first and marks everything
// addressed to the caller as read. Opening the thread is what reads it.
func (s *Service) Conversation(ctx context.Context, accountID, providerID, patientID, planID string) ([]Message, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if _, err := s.participant(ctx, plan, providerID, patientID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.MarkAllRead(ctx, planID, accountID); err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].RecipientID == accountID {
			messages[i].IsRead = true
		}
	}
	return messages, nil
}

// Threads folds the caller's messages into one entry per plan, keyed by the
// newest message. The input is newest first, so the first message seen for a
// plan is its latest. Viewing the fold marks every message addressed to the
// caller as read; the returned Unread counts are the badges being cleared.
func (s *Service) Threads(ctx context.Context, accountID string) ([]Thread, error) {
	messages, err := s.repo.ListByUser(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	threads := []Thread{}
	for _, message := range messages {
		idx, ok := seen[message.PlanID]
		if !ok {
			seen[message.PlanID] = len(threads)
			threads = append(threads, Thread{PlanID: message.PlanID, LastMessage: message})
			idx = len(threads) - 1
		}
		if message.RecipientID == accountID && !message.IsRead {
			threads[idx].Unread++
		}
	}

	if _, err := s.repo.MarkAllReadForUser(ctx, accountID); err != nil {
		return nil, err
	}
	return threads, nil
}

func (s *Service) Unread(ctx context.Context, accountID string) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}
