// Package dashboard assembles the per-role home screens out of the plan,
// session and message stores. It owns no data of its own.
package dashboard

import (
	"context"
	"time"

	"github.com/sheisgracious/mindwell/internal/booking"
	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/providers"
)

type PatientDashboard struct {
	Patient          patients.Patient    `json:"patient"`
	ActivePlans      []plans.TherapyPlan `json:"active_plans"`
	Plans            []plans.TherapyPlan `json:"plans"`
	UpcomingSessions []booking.Session   `json:"upcoming_sessions"`
	PastSessions     []booking.Session   `json:"past_sessions"`
	UnreadMessages   int64               `json:"unread_messages"`
}

type ProviderDashboard struct {
	Provider         providers.Provider  `json:"provider"`
	ActivePlans      []plans.TherapyPlan `json:"active_plans"`
	TodaySessions    []booking.Session   `json:"today_sessions"`
	UpcomingSessions []booking.Session   `json:"upcoming_sessions"`
	UnreadMessages   int64               `json:"unread_messages"`
}

// PlanSource, SessionSource and UnreadSource are the read slices the
// dashboard composes. The plans and booking repositories and the messaging
// service satisfy them.
type PlanSource interface {
	ListByPatient(ctx context.Context, patientID string, filter plans.ListFilter) ([]plans.TherapyPlan, error)
	ListByProvider(ctx context.Context, providerID string, filter plans.ListFilter) ([]plans.TherapyPlan, error)
}

type SessionSource interface {
	ListUpcomingByPatient(ctx context.Context, patientID, fromDate string) ([]booking.Session, error)
	ListPastByPatient(ctx context.Context, patientID, beforeDate string, limit int64) ([]booking.Session, error)
	ListUpcomingByProvider(ctx context.Context, providerID, fromDate string) ([]booking.Session, error)
	ListByProviderOnDate(ctx context.Context, providerID, date string) ([]booking.Session, error)
}

type UnreadSource interface {
	Unread(ctx context.Context, accountID string) (int64, error)
}

type Service struct {
	plans     PlanSource
	sessions  SessionSource
	messages  UnreadSource
	location  *time.Location
	pastLimit int64
}

func NewService(planSource PlanSource, sessions SessionSource, messages UnreadSource, location *time.Location, pastLimit int64) *Service {
	return &Service{
		plans:     planSource,
		sessions:  sessions,
		messages:  messages,
		location:  location,
		pastLimit: pastLimit,
	}
}

func (s *Service) today() string {
	return time.Now().In(s.location).Format("2006-01-02")
}

func (s *Service) ForPatient(ctx context.Context, accountID string, patient patients.Patient) (PatientDashboard, error) {
	today := s.today()

	allPlans, err := s.plans.ListByPatient(ctx, patient.ID, plans.ListFilter{})
	if err != nil {
		return PatientDashboard{}, err
	}
	active := []plans.TherapyPlan{}
	for _, plan := range allPlans {
		if plan.Status == plans.StatusActive {
			active = append(active, plan)
		}
	}

	upcoming, err := s.sessions.ListUpcomingByPatient(ctx, patient.ID, today)
	if err != nil {
		return PatientDashboard{}, err
	}
	past, err := s.sessions.ListPastByPatient(ctx, patient.ID, today, s.pastLimit)
	if err != nil {
		return PatientDashboard{}, err
	}
	unread, err := s.messages.Unread(ctx, accountID)
	if err != nil {
		return PatientDashboard{}, err
	}

	return PatientDashboard{
		Patient:          patient,
		ActivePlans:      active,
		Plans:            allPlans,
		UpcomingSessions: upcoming,
		PastSessions:     past,
		UnreadMessages:   unread,
	}, nil
}

func (s *Service) ForProvider(ctx context.Context, accountID string, provider providers.Provider) (ProviderDashboard, error) {
	today := s.today()

	active, err := s.plans.ListByProvider(ctx, provider.ID, plans.ListFilter{Status: plans.StatusActive})
	if err != nil {
		return ProviderDashboard{}, err
	}
	todays, err := s.sessions.ListByProviderOnDate(ctx, provider.ID, today)
	if err != nil {
		return ProviderDashboard{}, err
	}
	upcoming, err := s.sessions.ListUpcomingByProvider(ctx, provider.ID, today)
	if err != nil {
		return ProviderDashboard{}, err
	}
	unread, err := s.messages.Unread(ctx, accountID)
	if err != nil {
		return ProviderDashboard{}, err
	}

	return ProviderDashboard{
		Provider:         provider,
		ActivePlans:      active,
		TodaySessions:    todays,
		UpcomingSessions: upcoming,
		UnreadMessages:   unread,
	}, nil
}
