package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sheisgracious/mindwell/internal/cache"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/schedule"
)

var (
	ErrPlanNotFound       = errors.New("therapy plan not found")
	ErrNotPlanPatient     = errors.New("plan belongs to another patient")
	ErrPlanNotActive      = errors.New("therapy plan is not active")
	ErrPastSlot           = errors.New("cannot book a session in the past")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrNotFound           = errors.New("session not found")
	ErrNotSessionProvider = errors.New("session belongs to another provider")
	ErrSessionFinal       = errors.New("session is already in a final state")
)

// lockTTL bounds how long a booking lock can outlive a crashed request.
const lockTTL = 5 * time.Second

// PlanSource is the slice of the plans service booking needs.
type PlanSource interface {
	Get(ctx context.Context, id string) (*plans.TherapyPlan, error)
}

type Service struct {
	repo     Repository
	plans    PlanSource
	engine   *Engine
	locker   cache.Locker
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
	metrics  *Metrics
}

func NewService(repo Repository, planSource PlanSource, engine *Engine, locker cache.Locker, c cache.Cache, cacheTTL time.Duration, location *time.Location, metrics *Metrics) *Service {
	return &Service{
		repo:     repo,
		plans:    planSource,
		engine:   engine,
		locker:   locker,
		cache:    c,
		cacheTTL: cacheTTL,
		location: location,
		metrics:  metrics,
	}
}

// CreateSession books a slot on an active plan for that plan's patient. The
// availability check runs under a per-provider-day lock so two concurrent
// requests for the same slot cannot both pass it; the partial unique index
// on scheduled sessions backstops the lock.
func (s *Service) CreateSession(ctx context.Context, patientID, planID string, req CreateRequest) (*Session, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.PatientID != patientID {
		return nil, ErrNotPlanPatient
	}
	if plan.Status != plans.StatusActive {
		return nil, ErrPlanNotActive
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = schedule.DefaultSessionMinutes
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = TypeVideo
	}

	now := time.Now().In(s.location)
	past, err := schedule.IsSlotPast(req.SessionDate, req.SessionTime, s.location, now)
	if err != nil {
		return nil, err
	}
	if past {
		return nil, ErrPastSlot
	}

	start, err := schedule.ParseClockToMinutes(req.SessionTime)
	if err != nil {
		return nil, err
	}
	slot := schedule.Interval{Start: start, End: start + duration}

	release, err := s.locker.Acquire(ctx, bookingLockKey(plan.ProviderID, req.SessionDate), lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			s.metrics.Conflicts.Inc()
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	defer release()

	free, err := s.engine.IsFree(ctx, plan.ProviderID, req.SessionDate, slot)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.Conflicts.Inc()
		return nil, ErrSlotUnavailable
	}

	session := &Session{
		PlanID:          plan.ID,
		ProviderID:      plan.ProviderID,
		PatientID:       plan.PatientID,
		SessionDate:     req.SessionDate,
		SessionTime:     req.SessionTime,
		DurationMinutes: duration,
		SessionType:     sessionType,
		Status:          StatusScheduled,
		PaymentStatus:   PaymentUnpaid,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.metrics.Conflicts.Inc()
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.invalidateSlots(ctx, plan.ProviderID)
	s.metrics.Booked.Inc()
	return session, nil
}

// UpdateSession lets the session's provider record outcomes. A session in a
// final state only accepts the same status again; the repeat is a no-op so
// retried requests stay safe.
func (s *Service) UpdateSession(ctx context.Context, providerID, sessionID string, req UpdateRequest) (*Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.ProviderID != providerID {
		return nil, ErrNotSessionProvider
	}

	set := bson.M{}
	freesSlot := false
	if req.Status != nil && *req.Status != session.Status {
		if IsTerminalStatus(session.Status) {
			return nil, ErrSessionFinal
		}
		if *req.Status == StatusScheduled {
			return nil, ErrSessionFinal
		}
		set["status"] = *req.Status
		freesSlot = true
	}
	if req.PaymentStatus != nil {
		set["payment_status"] = *req.PaymentStatus
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if req.FollowUpRequired != nil {
		set["follow_up_required"] = *req.FollowUpRequired
	}
	if len(set) == 0 {
		return session, nil
	}

	updated, err := s.repo.Update(ctx, sessionID, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if freesSlot {
		s.invalidateSlots(ctx, updated.ProviderID)
	}
	return updated, nil
}

// GetForParty returns the session when the caller is its provider or its
// patient.
func (s *Service) GetForParty(ctx context.Context, sessionID, providerID, patientID string) (*Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.ProviderID != providerID && session.PatientID != patientID {
		return nil, ErrNotSessionProvider
	}
	return session, nil
}

// ListByPlan returns a plan's sessions, newest first. Party checks belong to
// the caller, which already holds the plan.
func (s *Service) ListByPlan(ctx context.Context, planID string) ([]Session, error) {
	return s.repo.ListByPlan(ctx, planID)
}

// FreeSlots lists bookable start times for a provider on one date, cached
// per provider, date and duration. Booking and cancellation invalidate the
// provider's entries.
func (s *Service) FreeSlots(ctx context.Context, providerID, date string, duration int) (DaySlots, error) {
	if duration == 0 {
		duration = schedule.DefaultSessionMinutes
	}

	key := slotsCacheKey(providerID, date, duration)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached DaySlots
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	now := time.Now().In(s.location)
	slots, err := s.engine.FreeSlots(ctx, providerID, date, duration, now)
	if err != nil {
		return DaySlots{}, err
	}

	result := DaySlots{
		ProviderID:      providerID,
		Date:            date,
		DurationMinutes: duration,
		Slots:           slots,
	}
	if raw, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, key, raw, s.cacheTTL)
	}
	return result, nil
}

func (s *Service) invalidateSlots(ctx context.Context, providerID string) {
	_ = s.cache.DeletePrefix(ctx, "slots:"+providerID+":")
}

func bookingLockKey(providerID, date string) string {
	return fmt.Sprintf("book:%s:%s", providerID, date)
}

func slotsCacheKey(providerID, date string, duration int) string {
	return fmt.Sprintf("slots:%s:%s:%d", providerID, date, duration)
}
