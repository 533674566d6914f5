package ledger

import (
	"testing"
	"time"
)

// millisAt builds a Unix-millisecond timestamp for a local clock reading.
func millisAt(t *testing.T, loc *time.Location, day string, hour, min int) int64 {
	t.Helper()
	d, err := time.ParseInLocation(DayKeyFormat, day, loc)
	if err != nil {
		t.Fatalf("bad day %q: %v", day, err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute).UnixMilli()
}

func TestSplitDays_SingleDay(t *testing.T) {
	loc := time.UTC
	start := millisAt(t, loc, "2026-03-10", 9, 0)
	end := millisAt(t, loc, "2026-03-10", 10, 30)

	slices := SplitDays(start, end, loc)
	if len(slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(slices))
	}
	if slices[0].Day != "2026-03-10" {
		t.Errorf("expected day 2026-03-10, got %s", slices[0].Day)
	}
	if want := int64(90 * 60 * 1000); slices[0].Millis != want {
		t.Errorf("expected %d ms, got %d", want, slices[0].Millis)
	}
}

func TestSplitDays_MidnightCrossing(t *testing.T) {
	loc := time.UTC
	start := millisAt(t, loc, "2026-03-10", 23, 0)
	end := millisAt(t, loc, "2026-03-11", 1, 0)

	slices := SplitDays(start, end, loc)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	hour := int64(time.Hour / time.Millisecond)
	if slices[0].Day != "2026-03-10" || slices[0].Millis != hour {
		t.Errorf("first slice: got (%s, %d), want (2026-03-10, %d)", slices[0].Day, slices[0].Millis, hour)
	}
	if slices[1].Day != "2026-03-11" || slices[1].Millis != hour {
		t.Errorf("second slice: got (%s, %d), want (2026-03-11, %d)", slices[1].Day, slices[1].Millis, hour)
	}
}

func TestSplitDays_SumsExactly(t *testing.T) {
	loc := time.UTC
	start := millisAt(t, loc, "2026-03-10", 17, 45)
	end := millisAt(t, loc, "2026-03-13", 3, 12)

	slices := SplitDays(start, end, loc)
	if len(slices) != 4 {
		t.Fatalf("expected 4 slices, got %d", len(slices))
	}
	var sum int64
	for _, sl := range slices {
		if sl.Millis <= 0 {
			t.Errorf("slice %s has non-positive duration %d", sl.Day, sl.Millis)
		}
		sum += sl.Millis
	}
	if sum != end-start {
		t.Errorf("slices sum to %d, want %d", sum, end-start)
	}
}

func TestSplitDays_Degenerate(t *testing.T) {
	loc := time.UTC
	at := millisAt(t, loc, "2026-03-10", 12, 0)

	if got := SplitDays(at, at, loc); got != nil {
		t.Errorf("expected nil for empty interval, got %v", got)
	}
	if got := SplitDays(at, at-1000, loc); got != nil {
		t.Errorf("expected nil for inverted interval, got %v", got)
	}
}

func TestDayOverlap(t *testing.T) {
	loc := time.UTC
	start := millisAt(t, loc, "2026-03-10", 23, 0)
	end := millisAt(t, loc, "2026-03-11", 1, 0)
	hour := int64(time.Hour / time.Millisecond)

	if got := DayOverlap(start, end, "2026-03-10", loc); got != hour {
		t.Errorf("overlap with first day: got %d, want %d", got, hour)
	}
	if got := DayOverlap(start, end, "2026-03-11", loc); got != hour {
		t.Errorf("overlap with second day: got %d, want %d", got, hour)
	}
	if got := DayOverlap(start, end, "2026-03-12", loc); got != 0 {
		t.Errorf("overlap with untouched day: got %d, want 0", got)
	}
	if got := DayOverlap(end, start, "2026-03-10", loc); got != 0 {
		t.Errorf("inverted interval: got %d, want 0", got)
	}
	if got := DayOverlap(start, end, "not-a-day", loc); got != 0 {
		t.Errorf("unparseable day: got %d, want 0", got)
	}
}
