package ledger

import (
	"sync"
	"time"
)

// Options configures a Store.
type Options struct {
	// Location is the time zone used for day bucketing. Defaults to the
	// process-local zone.
	Location *time.Location

	// AIIdleThreshold is how long a single AI activity mark keeps its segment
	// alive. Defaults to DefaultAIIdleThreshold.
	AIIdleThreshold time.Duration

	// TemplateProject names the scratch/template project excluded from
	// per-project stats. Matched against both identifier and display name.
	TemplateProject string
}

// DefaultAIIdleThreshold is the idle-extension window for AI segments.
const DefaultAIIdleThreshold = 15 * time.Second

// Store is the activity timekeeping store. It owns all persisted aggregates
// and the in-progress checkpoint and AI segments. Every exported method runs
// under one mutex, so compound reads never observe a torn flush; no method
// performs I/O while holding it.
type Store struct {
	mu     sync.Mutex
	loc    *time.Location
	aiIdle int64 // ms
	tmpl   string

	state *State
}

// New creates an empty Store.
func New(opts Options) *Store {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	idle := opts.AIIdleThreshold
	if idle <= 0 {
		idle = DefaultAIIdleThreshold
	}
	return &Store{
		loc:    loc,
		aiIdle: idle.Milliseconds(),
		tmpl:   opts.TemplateProject,
		state:  NewState(),
	}
}

func (s *Store) lock()   { s.mu.Lock() }
func (s *Store) unlock() { s.mu.Unlock() }

// Restore replaces the store's state with a loaded one. Any open checkpoint in
// the loaded state is discarded: the elapsed real time since the last
// heartbeat is unknowable after a crash, so a stale checkpoint must never be
// resumed.
func (s *Store) Restore(st *State) {
	s.lock()
	defer s.unlock()
	st.Checkpoint = nil
	s.state = st
}

// Snapshot returns a deep copy of the current state, for the persister.
func (s *Store) Snapshot() *State {
	s.lock()
	defer s.unlock()
	return s.state.clone()
}

// Location returns the store's bucketing time zone.
func (s *Store) Location() *time.Location {
	return s.loc
}

// RegisterProject backfills the display-name and path side tables for a live
// project.
func (s *Store) RegisterProject(ref ProjectRef) {
	s.lock()
	defer s.unlock()
	if ref.ID == "" {
		return
	}
	if ref.Name != "" {
		s.state.ProjectNames[ref.ID] = ref.Name
	}
	if ref.Path != "" {
		s.state.ProjectPaths[ref.ID] = ref.Path
	}
}

// AppendElapsed splits [start, end) across calendar days and adds each day's
// share to the focus totals: always to the global daily total, to the project
// total when project is non-empty, and to the branch total when both project
// and branch are non-empty. Callers must not append the same real interval
// twice; the state machine guarantees this by always advancing the checkpoint
// start to the flush end.
func (s *Store) AppendElapsed(project, branch string, start, end int64) {
	s.lock()
	defer s.unlock()
	s.appendFocusLocked(project, branch, start, end)
}

func (s *Store) appendFocusLocked(project, branch string, start, end int64) {
	for _, sl := range SplitDays(start, end, s.loc) {
		s.state.FocusDaily[sl.Day] += sl.Millis
		if project == "" {
			continue
		}
		addDay(s.state.ProjectFocus, project, sl.Day, sl.Millis)
		if branch != "" {
			branches := s.state.BranchFocus[project]
			if branches == nil {
				branches = make(map[string]map[string]int64)
				s.state.BranchFocus[project] = branches
			}
			days := branches[branch]
			if days == nil {
				days = make(map[string]int64)
				branches[branch] = days
			}
			days[sl.Day] += sl.Millis
		}
	}
}

func (s *Store) appendAILocked(project string, start, end int64) {
	for _, sl := range SplitDays(start, end, s.loc) {
		s.state.AIDaily[sl.Day] += sl.Millis
		if project != "" {
			addDay(s.state.ProjectAI, project, sl.Day, sl.Millis)
		}
	}
}

func addDay(m map[string]map[string]int64, key, day string, millis int64) {
	days := m[key]
	if days == nil {
		days = make(map[string]int64)
		m[key] = days
	}
	days[day] += millis
}

// OpenCheckpoint opens the tracking interval at now for the given attribution.
// Any previously open checkpoint is flushed at now first, so time is never
// silently dropped by a reopen.
func (s *Store) OpenCheckpoint(project, branch string, now int64) {
	s.lock()
	defer s.unlock()
	s.closeCheckpointLocked(now)
	s.state.Checkpoint = &Checkpoint{Start: now, Project: project, Branch: branch}
	s.state.SessionDate = DayKey(now, s.loc)
}

// AdvanceCheckpoint flushes the open checkpoint's elapsed time up to now and
// restarts it at now, keeping the same attribution. This is the periodic
// heartbeat flush: after it, a crash can lose at most one heartbeat of time.
func (s *Store) AdvanceCheckpoint(now int64) {
	s.lock()
	defer s.unlock()
	cp := s.state.Checkpoint
	if cp == nil {
		return
	}
	if !s.state.Paused {
		s.appendFocusLocked(cp.Project, cp.Branch, cp.Start, now)
	}
	cp.Start = now
}

// CloseCheckpoint flushes the open checkpoint truncated at end and clears it.
// No-op when nothing is open. end may precede the checkpoint start (idle
// truncation after a long gap); the flush then contributes zero.
func (s *Store) CloseCheckpoint(end int64) {
	s.lock()
	defer s.unlock()
	s.closeCheckpointLocked(end)
}

func (s *Store) closeCheckpointLocked(end int64) {
	cp := s.state.Checkpoint
	if cp == nil {
		return
	}
	if !s.state.Paused {
		s.appendFocusLocked(cp.Project, cp.Branch, cp.Start, end)
	}
	s.state.Checkpoint = nil
}

// SwitchCheckpoint flushes the open checkpoint at now and reopens it at now
// with a new attribution, in one serialized step. Used on project and branch
// changes while focused.
func (s *Store) SwitchCheckpoint(project, branch string, now int64) {
	s.OpenCheckpoint(project, branch, now)
}

// Checkpoint returns a copy of the open checkpoint, if any.
func (s *Store) Checkpoint() (Checkpoint, bool) {
	s.lock()
	defer s.unlock()
	if s.state.Checkpoint == nil {
		return Checkpoint{}, false
	}
	return *s.state.Checkpoint, true
}

// SessionElapsed returns how long the current checkpoint has been open, or 0
// when not tracking or paused.
func (s *Store) SessionElapsed(now int64) int64 {
	s.lock()
	defer s.unlock()
	cp := s.state.Checkpoint
	if cp == nil || s.state.Paused {
		return 0
	}
	return clampNonNegative(now - cp.Start)
}

// SetPaused sets the manual-pause flag. The caller is responsible for flushing
// or reopening the checkpoint around the toggle.
func (s *Store) SetPaused(paused bool) {
	s.lock()
	defer s.unlock()
	s.state.Paused = paused
}

// IsPaused reports the manual-pause flag.
func (s *Store) IsPaused() bool {
	s.lock()
	defer s.unlock()
	return s.state.Paused
}

// SetSessionDate records the day the current session belongs to. Bookkeeping
// only; the day-bucket splitter is what keeps midnight-crossing intervals
// correct.
func (s *Store) SetSessionDate(day string) {
	s.lock()
	defer s.unlock()
	s.state.SessionDate = day
}

// SessionDate returns the recorded session day key.
func (s *Store) SessionDate() string {
	s.lock()
	defer s.unlock()
	return s.state.SessionDate
}

// SetAITracking toggles AI activity recording.
func (s *Store) SetAITracking(enabled bool) {
	s.lock()
	defer s.unlock()
	s.state.AITracking = enabled
}

// --- queries ---
// Every query reads persisted totals and the open checkpoint (or open AI
// segments) under the same lock, so a concurrent flush can never be counted
// both as persisted and as live.

// DayTotal is one day's accumulated time.
type DayTotal struct {
	Day    string
	Millis int64
}

// TodayFocus returns today's focus time, including the open checkpoint.
func (s *Store) TodayFocus(now int64) int64 {
	s.lock()
	defer s.unlock()
	day := DayKey(now, s.loc)
	return s.state.FocusDaily[day] + s.checkpointOverlapLocked(day, now)
}

// TotalFocus returns all-time focus time, including the open checkpoint.
func (s *Store) TotalFocus(now int64) int64 {
	s.lock()
	defer s.unlock()
	var total int64
	for _, ms := range s.state.FocusDaily {
		total += ms
	}
	return total + s.checkpointLiveLocked(now)
}

// PeriodFocus returns exactly days entries, one per calendar day ending today,
// oldest first, absent days zero-filled.
func (s *Store) PeriodFocus(days int, now int64) []DayTotal {
	s.lock()
	defer s.unlock()
	return s.periodLocked(days, now, s.state.FocusDaily, true)
}

// TodayAI returns today's AI time, including live open segments.
func (s *Store) TodayAI(now int64) int64 {
	s.lock()
	defer s.unlock()
	day := DayKey(now, s.loc)
	return s.state.AIDaily[day] + s.segmentsOverlapLocked("", day, now)
}

// TotalAI returns all-time AI time, including live open segments.
func (s *Store) TotalAI(now int64) int64 {
	s.lock()
	defer s.unlock()
	var total int64
	for _, ms := range s.state.AIDaily {
		total += ms
	}
	return total + s.segmentsLiveLocked("", now)
}

// PeriodAI is PeriodFocus for AI time.
func (s *Store) PeriodAI(days int, now int64) []DayTotal {
	s.lock()
	defer s.unlock()
	return s.periodLocked(days, now, s.state.AIDaily, false)
}

// ProjectTodayFocus returns today's focus time for one project.
func (s *Store) ProjectTodayFocus(project string, now int64) int64 {
	s.lock()
	defer s.unlock()
	day := DayKey(now, s.loc)
	total := s.state.ProjectFocus[project][day]
	if cp := s.state.Checkpoint; cp != nil && cp.Project == project {
		total += s.checkpointOverlapLocked(day, now)
	}
	return total
}

// ProjectTotalFocus returns all-time focus time for one project.
func (s *Store) ProjectTotalFocus(project string, now int64) int64 {
	s.lock()
	defer s.unlock()
	var total int64
	for _, ms := range s.state.ProjectFocus[project] {
		total += ms
	}
	if cp := s.state.Checkpoint; cp != nil && cp.Project == project {
		total += s.checkpointLiveLocked(now)
	}
	return total
}

func (s *Store) periodLocked(days int, now int64, persisted map[string]int64, focus bool) []DayTotal {
	if days <= 0 {
		return nil
	}
	out := make([]DayTotal, 0, days)
	t := time.UnixMilli(now).In(s.loc)
	for i := days - 1; i >= 0; i-- {
		day := t.AddDate(0, 0, -i).Format(DayKeyFormat)
		ms := persisted[day]
		if focus {
			ms += s.checkpointOverlapLocked(day, now)
		} else {
			ms += s.segmentsOverlapLocked("", day, now)
		}
		out = append(out, DayTotal{Day: day, Millis: ms})
	}
	return out
}

// checkpointOverlapLocked returns the open checkpoint's live overlap with one
// day, zero when absent or paused.
func (s *Store) checkpointOverlapLocked(day string, now int64) int64 {
	cp := s.state.Checkpoint
	if cp == nil || s.state.Paused {
		return 0
	}
	return DayOverlap(cp.Start, now, day, s.loc)
}

func (s *Store) checkpointLiveLocked(now int64) int64 {
	cp := s.state.Checkpoint
	if cp == nil || s.state.Paused {
		return 0
	}
	return clampNonNegative(now - cp.Start)
}

// segmentsOverlapLocked returns the live overlap of open AI segments with one
// day. A segment is live up to min(now, segment end); project "" sums all
// projects.
func (s *Store) segmentsOverlapLocked(project, day string, now int64) int64 {
	var total int64
	for p, seg := range s.state.Segments {
		if project != "" && p != project {
			continue
		}
		end := seg.End
		if now < end {
			end = now
		}
		total += DayOverlap(seg.Start, end, day, s.loc)
	}
	return total
}

func (s *Store) segmentsLiveLocked(project string, now int64) int64 {
	var total int64
	for p, seg := range s.state.Segments {
		if project != "" && p != project {
			continue
		}
		end := seg.End
		if now < end {
			end = now
		}
		total += clampNonNegative(end - seg.Start)
	}
	return total
}

func clampNonNegative(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms
}
