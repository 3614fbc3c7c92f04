package booking

import (
	"context"
	"time"

	"github.com/sheisgracious/mindwell/internal/schedule"
)

// WindowSource yields a provider's open weekly windows for one weekday.
type WindowSource interface {
	Windows(ctx context.Context, providerID, day string) ([]schedule.Window, error)
}

// Engine answers one question: can this provider take this slot on this
// date. A slot is free when it sits inside a recurring open window and
// overlaps no scheduled session.
type Engine struct {
	windows  WindowSource
	sessions Repository
	location *time.Location
}

func NewEngine(windows WindowSource, sessions Repository, location *time.Location) *Engine {
	return &Engine{
		windows:  windows,
		sessions: sessions,
		location: location,
	}
}

func (e *Engine) IsFree(ctx context.Context, providerID, date string, slot schedule.Interval) (bool, error) {
	if !slot.Valid() {
		return false, schedule.ErrInvalidRange
	}

	day, err := schedule.WeekdayOf(date, e.location)
	if err != nil {
		return false, err
	}

	windows, err := e.windows.Windows(ctx, providerID, day)
	if err != nil {
		return false, err
	}
	if !schedule.InAnyWindow(windows, slot) {
		return false, nil
	}

	reserved, err := e.sessions.ReservedIntervals(ctx, providerID, date)
	if err != nil {
		return false, err
	}
	for _, taken := range reserved {
		if schedule.Overlaps(slot, taken) {
			return false, nil
		}
	}
	return true, nil
}

// FreeSlots lists every bookable start time of the given duration on the
// date, window by window, with reserved and already-elapsed slots removed.
func (e *Engine) FreeSlots(ctx context.Context, providerID, date string, duration int, now time.Time) ([]string, error) {
	day, err := schedule.WeekdayOf(date, e.location)
	if err != nil {
		return nil, err
	}

	windows, err := e.windows.Windows(ctx, providerID, day)
	if err != nil {
		return nil, err
	}
	slots, err := schedule.SlotsInWindows(windows, duration)
	if err != nil {
		return nil, err
	}

	reserved, err := e.sessions.ReservedIntervals(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	slots, err = schedule.FilterOverlapping(slots, duration, reserved)
	if err != nil {
		return nil, err
	}
	return schedule.FilterPastSlots(date, slots, e.location, now)
}
