package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestWeekdayOf(t *testing.T) {
	loc := mustLoadLoc(t)
	day, err := WeekdayOf("2026-02-02", loc)
	if err != nil {
		t.Fatalf("WeekdayOf error: %v", err)
	}
	if day != "monday" {
		t.Fatalf("expected monday, got %s", day)
	}

	if _, err := WeekdayOf("02/02/2026", loc); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow("09:00", "12:00")
	if err != nil {
		t.Fatalf("NewWindow error: %v", err)
	}
	if w.Start != 540 || w.End != 720 {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestNewWindowInverted(t *testing.T) {
	if _, err := NewWindow("12:00", "09:00"); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := NewWindow("09:00", "09:00"); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange for empty range, got %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: 540, End: 720} // 09:00-12:00
	if !w.Contains(Interval{Start: 600, End: 660}) {
		t.Fatalf("expected 10:00-11:00 inside 09:00-12:00")
	}
	if w.Contains(Interval{Start: 480, End: 540}) {
		t.Fatalf("expected 08:00-09:00 outside 09:00-12:00")
	}
	if w.Contains(Interval{Start: 690, End: 750}) {
		t.Fatalf("expected range spilling past window end to be outside")
	}
}

func TestOverlaps(t *testing.T) {
	a := Interval{Start: 600, End: 660} // 10:00-11:00
	b := Interval{Start: 630, End: 690} // 10:30-11:30
	if !Overlaps(a, b) {
		t.Fatalf("expected overlap between %v and %v", a, b)
	}
	c := Interval{Start: 660, End: 720} // 11:00-12:00, adjacent
	if Overlaps(a, c) {
		t.Fatalf("adjacent half-open ranges must not overlap")
	}
}

func TestSlotsInWindows(t *testing.T) {
	windows := []Window{
		{Start: 540, End: 720},  // 09:00-12:00
		{Start: 840, End: 1020}, // 14:00-17:00
	}
	slots, err := SlotsInWindows(windows, 60)
	if err != nil {
		t.Fatalf("SlotsInWindows error: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d: %v", len(slots), slots)
	}
	if slots[0] != "09:00" || slots[2] != "11:00" || slots[3] != "14:00" || slots[5] != "16:00" {
		t.Fatalf("unexpected slots: %v", slots)
	}
}

func TestSlotsInWindowsBadDuration(t *testing.T) {
	if _, err := SlotsInWindows([]Window{{Start: 540, End: 720}}, 0); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestFilterOverlapping(t *testing.T) {
	slots := []string{"09:00", "10:00", "11:00"}
	reserved := []Interval{{Start: 600, End: 660}} // 10:00-11:00 taken
	filtered, err := FilterOverlapping(slots, 60, reserved)
	if err != nil {
		t.Fatalf("FilterOverlapping error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 slots, got %d: %v", len(filtered), filtered)
	}
	if filtered[0] != "09:00" || filtered[1] != "11:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}

func TestIsDatePast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)
	past, err := IsDatePast("2026-02-03", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if !past {
		t.Fatalf("expected date to be past")
	}

	past, err = IsDatePast("2026-02-04", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if past {
		t.Fatalf("expected date to be not past")
	}
}

func TestIsSlotPast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)
	past, err := IsSlotPast("2026-02-04", "09:00", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if !past {
		t.Fatalf("expected slot to be past")
	}
	past, err = IsSlotPast("2026-02-04", "10:30", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if past {
		t.Fatalf("expected slot to be future")
	}
}

func TestFilterPastSlots(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 30, 0, 0, loc)
	slots := []string{"09:00", "10:00", "11:00"}
	filtered, err := FilterPastSlots("2026-02-04", slots, loc, now)
	if err != nil {
		t.Fatalf("FilterPastSlots error: %v", err)
	}
	if len(filtered) != 1 || filtered[0] != "11:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}

func TestMinutesRoundTrip(t *testing.T) {
	min, err := ParseClockToMinutes("14:45")
	if err != nil {
		t.Fatalf("ParseClockToMinutes error: %v", err)
	}
	if min != 885 {
		t.Fatalf("expected 885, got %d", min)
	}
	if MinutesToClock(min) != "14:45" {
		t.Fatalf("round trip failed: %s", MinutesToClock(min))
	}
}
