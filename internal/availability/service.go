package availability

import (
	"context"
	"errors"
	"sort"

	"github.com/sheisgracious/mindwell/internal/schedule"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("availability not found")
	ErrNotOwner     = errors.New("availability belongs to another provider")
	ErrInvalidRange = errors.New("start time must be before end time")
	ErrInvalidDay   = errors.New("invalid day of week")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(ctx context.Context, providerID string, req CreateRequest) (Availability, error) {
	if !schedule.IsWeekdayName(req.DayOfWeek) {
		return Availability{}, ErrInvalidDay
	}
	if _, err := schedule.NewWindow(req.StartTime, req.EndTime); err != nil {
		return Availability{}, ErrInvalidRange
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item := Availability{
		ID:          primitive.NewObjectID().Hex(),
		ProviderID:  providerID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: isAvailable,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return Availability{}, err
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, providerID, id string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if item.ProviderID != providerID {
		return ErrNotOwner
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ListOwn returns every window the provider manages, closed ones included,
// ordered monday through sunday and by start time within a day.
func (s *Service) ListOwn(ctx context.Context, providerID string) ([]Availability, error) {
	items, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(schedule.WeekdayOrder))
	for i, day := range schedule.WeekdayOrder {
		rank[day] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		if rank[items[i].DayOfWeek] != rank[items[j].DayOfWeek] {
			return rank[items[i].DayOfWeek] < rank[items[j].DayOfWeek]
		}
		return items[i].StartTime < items[j].StartTime
	})
	return items, nil
}

// WindowsForDay returns the provider's open windows for one weekday, ordered
// by start time. A day with no windows yields an empty slice, never an error.
func (s *Service) WindowsForDay(ctx context.Context, providerID, day string) ([]Availability, error) {
	if !schedule.IsWeekdayName(day) {
		return nil, ErrInvalidDay
	}
	return s.repo.ListForDay(ctx, providerID, day)
}

// Windows parses a day's open windows into minute ranges for the engine.
func (s *Service) Windows(ctx context.Context, providerID, day string) ([]schedule.Window, error) {
	items, err := s.WindowsForDay(ctx, providerID, day)
	if err != nil {
		return nil, err
	}
	windows := make([]schedule.Window, 0, len(items))
	for _, item := range items {
		w, err := schedule.NewWindow(item.StartTime, item.EndTime)
		if err != nil {
			// A malformed stored window is skipped rather than blocking the
			// whole day.
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ByDay groups the provider's open windows monday through sunday, built fresh
// per call. Days without windows are absent from the result.
func (s *Service) ByDay(ctx context.Context, providerID string) ([]DaySchedule, error) {
	byDay := make(map[string][]Availability)
	for _, day := range schedule.WeekdayOrder {
		slots, err := s.repo.ListForDay(ctx, providerID, day)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			byDay[day] = slots
		}
	}

	result := make([]DaySchedule, 0, len(byDay))
	for _, day := range schedule.WeekdayOrder {
		if slots, ok := byDay[day]; ok {
			result = append(result, DaySchedule{Day: day, Slots: slots})
		}
	}
	return result, nil
}
