package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(Options{Location: time.UTC})
}

func TestAppendElapsed_NoDoubleCounting(t *testing.T) {
	s := newTestStore()
	loc := time.UTC

	// Disjoint intervals, one crossing midnight.
	a0 := millisAt(t, loc, "2026-04-01", 9, 0)
	a1 := millisAt(t, loc, "2026-04-01", 10, 0)
	b0 := millisAt(t, loc, "2026-04-01", 23, 30)
	b1 := millisAt(t, loc, "2026-04-02", 0, 30)
	c0 := millisAt(t, loc, "2026-04-02", 8, 0)
	c1 := millisAt(t, loc, "2026-04-02", 8, 45)

	s.AppendElapsed("loc:aaaa0001", "main", a0, a1)
	s.AppendElapsed("loc:aaaa0001", "main", b0, b1)
	s.AppendElapsed("loc:aaaa0001", "feature", c0, c1)

	now := millisAt(t, loc, "2026-04-02", 12, 0)
	want := (a1 - a0) + (b1 - b0) + (c1 - c0)
	require.Equal(t, want, s.TotalFocus(now))
	require.Equal(t, want, s.ProjectTotalFocus("loc:aaaa0001", now))
}

func TestAppendElapsed_DegenerateIntervalContributesZero(t *testing.T) {
	s := newTestStore()
	at := millisAt(t, time.UTC, "2026-04-01", 9, 0)

	s.AppendElapsed("loc:aaaa0001", "main", at, at)
	s.AppendElapsed("loc:aaaa0001", "main", at, at-5000)

	assert.Zero(t, s.TotalFocus(at))
}

func TestAppendElapsed_WithoutProjectOnlyGlobal(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	start := millisAt(t, loc, "2026-04-01", 9, 0)
	end := millisAt(t, loc, "2026-04-01", 9, 30)

	s.AppendElapsed("", "", start, end)

	now := millisAt(t, loc, "2026-04-01", 10, 0)
	assert.Equal(t, end-start, s.TotalFocus(now))
	assert.Zero(t, s.ProjectTotalFocus("loc:aaaa0001", now))
}

func TestQueries_BlendOpenCheckpoint(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	start := millisAt(t, loc, "2026-04-01", 9, 0)
	now := millisAt(t, loc, "2026-04-01", 9, 20)

	s.OpenCheckpoint("loc:aaaa0001", "main", start)

	live := now - start
	assert.Equal(t, live, s.TodayFocus(now))
	assert.Equal(t, live, s.TotalFocus(now))
	assert.Equal(t, live, s.ProjectTodayFocus("loc:aaaa0001", now))
	assert.Equal(t, live, s.SessionElapsed(now))

	// The blend is read-only: asking twice yields the same answer.
	assert.Equal(t, live, s.TodayFocus(now))
}

func TestAdvanceCheckpoint_HeartbeatDoesNotDoubleCount(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	start := millisAt(t, loc, "2026-04-01", 9, 0)
	s.OpenCheckpoint("loc:aaaa0001", "main", start)

	// Three heartbeats five minutes apart, then a query.
	now := start
	for i := 0; i < 3; i++ {
		now += 5 * 60 * 1000
		s.AdvanceCheckpoint(now)
	}

	assert.Equal(t, now-start, s.TotalFocus(now))
	assert.Equal(t, now-start, s.TodayFocus(now))
}

func TestCloseCheckpoint_TruncatesBeforeStart(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	start := millisAt(t, loc, "2026-04-01", 9, 0)
	s.OpenCheckpoint("loc:aaaa0001", "main", start)

	// A close truncated before the open contributes nothing and never goes
	// negative.
	s.CloseCheckpoint(start - 60_000)

	now := millisAt(t, loc, "2026-04-01", 10, 0)
	assert.Zero(t, s.TotalFocus(now))
	_, open := s.Checkpoint()
	assert.False(t, open)
}

func TestPeriodFocus_AlwaysReturnsExactlyNDays(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	s.AppendElapsed("loc:aaaa0001", "main",
		millisAt(t, loc, "2026-04-01", 9, 0),
		millisAt(t, loc, "2026-04-01", 10, 0))

	now := millisAt(t, loc, "2026-04-03", 12, 0)
	period := s.PeriodFocus(7, now)
	require.Len(t, period, 7)

	assert.Equal(t, "2026-03-28", period[0].Day)
	assert.Equal(t, "2026-04-03", period[6].Day)
	for _, d := range period {
		if d.Day == "2026-04-01" {
			assert.Equal(t, int64(60*60*1000), d.Millis)
		} else {
			assert.Zero(t, d.Millis, "day %s should be zero-filled", d.Day)
		}
	}

	assert.Nil(t, s.PeriodFocus(0, now))
}

func TestRestore_DiscardsStaleCheckpoint(t *testing.T) {
	s := newTestStore()
	st := NewState()
	st.FocusDaily["2026-04-01"] = 1234
	st.Checkpoint = &Checkpoint{Start: 1, Project: "loc:aaaa0001"}

	s.Restore(st)

	_, open := s.Checkpoint()
	assert.False(t, open, "a checkpoint found at load time must be discarded")
	assert.Equal(t, int64(1234), s.TotalFocus(millisAt(t, time.UTC, "2026-04-02", 0, 0)))
}

func TestPaused_SuppressesLiveTime(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	start := millisAt(t, loc, "2026-04-01", 9, 0)
	now := millisAt(t, loc, "2026-04-01", 9, 30)

	s.OpenCheckpoint("loc:aaaa0001", "main", start)
	s.SetPaused(true)

	assert.Zero(t, s.TodayFocus(now))
	assert.Zero(t, s.SessionElapsed(now))
	assert.True(t, s.IsPaused())
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	s.AppendElapsed("loc:aaaa0001", "main",
		millisAt(t, loc, "2026-04-01", 9, 0),
		millisAt(t, loc, "2026-04-01", 10, 0))

	snap := s.Snapshot()
	snap.FocusDaily["2026-04-01"] = 0
	snap.ProjectFocus["loc:aaaa0001"]["2026-04-01"] = 0

	now := millisAt(t, loc, "2026-04-01", 11, 0)
	assert.Equal(t, int64(60*60*1000), s.TotalFocus(now), "mutating a snapshot must not affect the store")
}

func TestOpenCheckpoint_ReopenFlushesPrevious(t *testing.T) {
	s := newTestStore()
	loc := time.UTC
	t0 := millisAt(t, loc, "2026-04-01", 9, 0)
	t1 := millisAt(t, loc, "2026-04-01", 9, 10)

	s.OpenCheckpoint("loc:aaaa0001", "main", t0)
	s.OpenCheckpoint("loc:bbbb0002", "main", t1)

	now := millisAt(t, loc, "2026-04-01", 9, 15)
	assert.Equal(t, t1-t0, s.ProjectTotalFocus("loc:aaaa0001", now))
	assert.Equal(t, now-t1, s.ProjectTotalFocus("loc:bbbb0002", now))
	assert.Equal(t, now-t0, s.TotalFocus(now))
}
