// Package ledger owns the durable activity-time ledger: day-bucketed focus and
// AI totals per project and branch, the open checkpoint interval, and the
// idle-extensible AI segments. Everything is accounted in Unix milliseconds and
// bucketed by calendar day in a configured time zone.
package ledger

import "time"

// DayKeyFormat is the layout for calendar-day bucket keys.
const DayKeyFormat = "2006-01-02"

// DaySlice is the portion of an interval that falls on a single calendar day.
type DaySlice struct {
	Day    string
	Millis int64
}

// DayKey returns the calendar-day bucket key for a Unix-millisecond timestamp.
func DayKey(millis int64, loc *time.Location) string {
	return time.UnixMilli(millis).In(loc).Format(DayKeyFormat)
}

// SplitDays splits the interval [start, end) into per-calendar-day slices in
// the given time zone. The slices are ordered, cover every day the interval
// touches, and sum exactly to end-start. Degenerate input (end <= start)
// yields nil.
func SplitDays(start, end int64, loc *time.Location) []DaySlice {
	if end <= start {
		return nil
	}

	var slices []DaySlice
	cur := start
	for cur < end {
		t := time.UnixMilli(cur).In(loc)
		// Next local midnight; time.Date normalizes the day+1 overflow and
		// handles DST transitions.
		next := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).UnixMilli()
		sliceEnd := end
		if next < sliceEnd {
			sliceEnd = next
		}
		slices = append(slices, DaySlice{
			Day:    t.Format(DayKeyFormat),
			Millis: sliceEnd - cur,
		})
		cur = sliceEnd
	}
	return slices
}

// DayOverlap returns how much of [start, end) falls on the given calendar day.
// It is the single-day, read-only restriction of SplitDays, used to blend an
// open interval into day-scoped queries without mutating anything.
func DayOverlap(start, end int64, day string, loc *time.Location) int64 {
	if end <= start {
		return 0
	}
	t, err := time.ParseInLocation(DayKeyFormat, day, loc)
	if err != nil {
		return 0
	}
	dayStart := t.UnixMilli()
	dayEnd := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).UnixMilli()

	if start > dayStart {
		dayStart = start
	}
	if end < dayEnd {
		dayEnd = end
	}
	if dayEnd <= dayStart {
		return 0
	}
	return dayEnd - dayStart
}
