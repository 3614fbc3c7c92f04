package schedule

import (
	"errors"
	"fmt"
	"time"
)

const DefaultSessionMinutes = 60

var (
	ErrInvalidDate     = errors.New("invalid date format")
	ErrInvalidTime     = errors.New("invalid time format")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidRange    = errors.New("invalid time range")
)

// Weekday names in calendar order, lowercase, as stored on availability records.
var WeekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

func WeekdayName(day time.Weekday) string {
	return weekdayNames[day]
}

func IsWeekdayName(name string) bool {
	for _, d := range WeekdayOrder {
		if d == name {
			return true
		}
	}
	return false
}

// WeekdayOf returns the lowercase weekday name for a date string.
func WeekdayOf(dateStr string, loc *time.Location) (string, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return "", err
	}
	return weekdayNames[date.Weekday()], nil
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}

	parsed, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}

	return parsed, nil
}

func ParseClockToMinutes(timeStr string) (int, error) {
	tm, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return tm.Hour()*60 + tm.Minute(), nil
}

func MinutesToClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	startToday := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	return date.Before(startToday), nil
}

func IsSlotPast(dateStr, timeStr string, loc *time.Location, now time.Time) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return !slot.After(now.In(loc)), nil
}

// Interval is a half-open time range [Start, End) in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Valid() bool {
	return i.Start >= 0 && i.Start < i.End
}

func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Window is a provider's recurring availability range on one weekday,
// expressed like an Interval in minutes from midnight.
type Window struct {
	Start int
	End   int
}

func (w Window) Contains(i Interval) bool {
	return i.Start >= w.Start && i.End <= w.End
}

// NewWindow parses "15:04" clock strings into a Window, rejecting inverted
// or empty ranges.
func NewWindow(startStr, endStr string) (Window, error) {
	start, err := ParseClockToMinutes(startStr)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseClockToMinutes(endStr)
	if err != nil {
		return Window{}, err
	}
	if end <= start {
		return Window{}, ErrInvalidRange
	}
	return Window{Start: start, End: end}, nil
}

// InAnyWindow reports whether the interval fits entirely inside at least one
// window. A window never counts partially: a range spilling over a window edge
// is outside the provider's hours.
func InAnyWindow(windows []Window, i Interval) bool {
	for _, w := range windows {
		if w.Contains(i) {
			return true
		}
	}
	return false
}

// SlotsInWindows generates candidate start times, stepped by duration, that
// fit inside the given windows. Windows are walked in the order given.
func SlotsInWindows(windows []Window, duration int) ([]string, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	slots := make([]string, 0)
	for _, w := range windows {
		for cursor := w.Start; cursor+duration <= w.End; cursor += duration {
			slots = append(slots, MinutesToClock(cursor))
		}
	}
	return slots, nil
}

func FilterOverlapping(slots []string, duration int, reserved []Interval) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		start, err := ParseClockToMinutes(s)
		if err != nil {
			return nil, err
		}
		current := Interval{Start: start, End: start + duration}
		overlap := false
		for _, r := range reserved {
			if Overlaps(current, r) {
				overlap = true
				break
			}
		}
		if !overlap {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func FilterPastSlots(dateStr string, slots []string, loc *time.Location, now time.Time) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		past, err := IsSlotPast(dateStr, s, loc, now)
		if err != nil {
			return nil, err
		}
		if !past {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}
