package focus

import (
	"log"
	"sync"
	"time"

	"github.com/blackwell-systems/focusledger/internal/ledger"
)

// State is the window-focus tracking state. Manual pause is an orthogonal flag
// owned by the ledger and suppresses accounting regardless of this state.
type State int

const (
	// Unfocused: the tracked application does not hold the foreground.
	Unfocused State = iota
	// PendingFocus: foreground gained, debounce timer running. No checkpoint
	// is open yet, so a momentary alt-tab bounce credits nothing.
	PendingFocus
	// Focused: actively accounting; a checkpoint is open unless paused.
	Focused
	// IdlePaused: still foreground, but no qualifying input for longer than
	// the idle threshold. The checkpoint was flushed truncated at the idle
	// start; an input event resumes without losing window-focus state.
	IdlePaused
)

func (s State) String() string {
	switch s {
	case Unfocused:
		return "unfocused"
	case PendingFocus:
		return "pending-focus"
	case Focused:
		return "focused"
	case IdlePaused:
		return "idle-paused"
	default:
		return "unknown"
	}
}

// Config holds the machine's timing knobs.
type Config struct {
	Debounce      time.Duration // foreground gain -> accounting start
	Grace         time.Duration // foreground loss tolerated before flushing
	IdleThreshold time.Duration // input silence before idle pause
	TickInterval  time.Duration // periodic tick cadence
	Heartbeat     time.Duration // flush + persist cadence
	BranchPoll    time.Duration // branch re-resolution cadence
	SuspendFactor int64         // tick gaps beyond factor*interval mean OS sleep
}

// Defaults for any zero Config field.
const (
	DefaultDebounce      = 3 * time.Second
	DefaultGrace         = 2 * time.Minute
	DefaultIdleThreshold = 60 * time.Second
	DefaultTickInterval  = time.Second
	DefaultHeartbeat     = 5 * time.Second
	DefaultBranchPoll    = 5 * time.Second
	DefaultSuspendFactor = 10
)

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Grace <= 0 {
		c.Grace = DefaultGrace
	}
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = DefaultIdleThreshold
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.Heartbeat <= 0 {
		c.Heartbeat = DefaultHeartbeat
	}
	if c.BranchPoll <= 0 {
		c.BranchPoll = DefaultBranchPoll
	}
	if c.SuspendFactor <= 0 {
		c.SuspendFactor = DefaultSuspendFactor
	}
	return c
}

// Machine is the focus state machine. It consumes foreground changes, input
// events, and periodic ticks, and calls into the ledger to open, advance, and
// flush the checkpoint. One machine drives one ledger store.
type Machine struct {
	mu  sync.Mutex
	cfg Config

	store    *ledger.Store
	resolver BranchResolver
	absent   bool // resolver collaborator missing, checked once
	logf     func(format string, args ...any)
	persist  func() // heartbeat persistence callback, invoked outside the lock

	state         State
	windowFocused bool
	window        ledger.ProjectRef // current tracked foreground project
	pending       ledger.ProjectRef // project awaiting debounce
	branch        string

	lastInput      int64
	lastTick       int64
	lastHeartbeat  int64
	lastBranchPoll int64

	debounce timer
	grace    timer
}

// New creates a Machine driving the given store. resolver may be nil when no
// version-control collaborator is available; branch attribution then degrades
// to the unknown bucket. persist, if non-nil, runs after every heartbeat tick.
func New(store *ledger.Store, resolver BranchResolver, cfg Config, persist func()) *Machine {
	return &Machine{
		cfg:      cfg.withDefaults(),
		store:    store,
		resolver: resolver,
		absent:   resolver == nil,
		logf:     log.Printf,
		persist:  persist,
	}
}

func (m *Machine) lock()   { m.mu.Lock() }
func (m *Machine) unlock() { m.mu.Unlock() }

// SetLogf overrides the machine's logger.
func (m *Machine) SetLogf(logf func(format string, args ...any)) {
	m.lock()
	defer m.unlock()
	m.logf = logf
}

// HandleForeground processes a foreground-window change at now.
func (m *Machine) HandleForeground(win Window, now int64) {
	m.lock()
	defer m.unlock()

	if win.Tracked {
		m.windowFocused = true
		switch m.state {
		case Unfocused:
			m.pending = win.Project
			m.state = PendingFocus
			m.debounce.arm(now + m.cfg.Debounce.Milliseconds())
		case PendingFocus:
			m.pending = win.Project
		case Focused:
			// Focus returned inside the grace window: same checkpoint
			// continues, no flush, no gap.
			m.grace.cancel()
			if win.Project.ID != "" && win.Project.ID != m.window.ID {
				m.switchProjectLocked(win.Project, now)
			}
		case IdlePaused:
			// Still idle until input arrives, but track where focus sits
			// so the resume reopens against the right project.
			if win.Project.ID != "" && win.Project.ID != m.window.ID {
				m.window = win.Project
				m.branch = m.resolveBranchLocked(win.Project)
			}
		}
		return
	}

	m.windowFocused = false
	switch m.state {
	case PendingFocus:
		m.debounce.cancel()
		m.state = Unfocused
	case Focused:
		m.grace.arm(now + m.cfg.Grace.Milliseconds())
	case IdlePaused:
		m.state = Unfocused
	}
}

// HandleInput processes a raw input event at now. Non-meaningful events are
// dropped before they touch any state.
func (m *Machine) HandleInput(ev InputEvent, now int64) {
	if !ev.Kind.Meaningful() {
		return
	}
	m.lock()
	defer m.unlock()

	m.lastInput = now
	if m.state == IdlePaused && m.windowFocused {
		m.state = Focused
		m.openCheckpointLocked(now)
	}
}

// Tick runs the periodic handlers at now. Each handler is independently
// guarded: a panic in one is logged and the rest still run.
func (m *Machine) Tick(now int64) {
	m.lock()
	persist := false

	m.guard("suspend-check", func() { m.checkSuspendLocked(now) })
	m.guard("debounce", func() { m.fireDebounceLocked(now) })
	m.guard("grace", func() { m.fireGraceLocked(now) })
	m.guard("idle-check", func() { m.checkIdleLocked(now) })
	m.guard("branch-poll", func() { m.pollBranchLocked(now) })
	m.guard("segment-expiry", func() { m.store.FlushExpiredSegments(now) })
	m.guard("heartbeat", func() { persist = m.heartbeatLocked(now) })
	m.guard("date-rollover", func() { m.rolloverLocked(now) })

	m.lastTick = now
	m.unlock()

	if persist && m.persist != nil {
		m.persist()
	}
}

func (m *Machine) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logf("tick handler %s: %v", name, r)
		}
	}()
	fn()
}

// checkSuspendLocked detects OS sleep as an outsized gap between consecutive
// ticks. Pre-sleep time flushes truncated at the last seen tick; the gap
// itself is never credited.
func (m *Machine) checkSuspendLocked(now int64) {
	if m.lastTick == 0 {
		return
	}
	gap := now - m.lastTick
	if gap <= m.cfg.TickInterval.Milliseconds()*m.cfg.SuspendFactor {
		return
	}

	m.store.EndSegmentsAt(m.lastTick)
	if cp, open := m.store.Checkpoint(); open {
		m.store.CloseCheckpoint(m.lastTick)
		m.store.OpenCheckpoint(cp.Project, cp.Branch, now)
		// Waking counts as activity, otherwise the idle check would
		// immediately kill the reopened checkpoint.
		m.lastInput = now
	}
	m.logf("suspend gap of %dms detected, resumed at tick", gap)
}

func (m *Machine) fireDebounceLocked(now int64) {
	if !m.debounce.fire(now) {
		return
	}
	if m.state != PendingFocus || !m.windowFocused {
		return
	}
	m.state = Focused
	m.window = m.pending
	m.branch = m.resolveBranchLocked(m.window)
	m.lastInput = now
	m.openCheckpointLocked(now)
}

func (m *Machine) fireGraceLocked(now int64) {
	if !m.grace.fire(now) {
		return
	}
	if m.state != Focused || m.windowFocused {
		return
	}
	m.store.CloseCheckpoint(now)
	m.state = Unfocused
}

// checkIdleLocked flushes truncated at lastInput+idleThreshold, not at now:
// the idle tail is never credited.
func (m *Machine) checkIdleLocked(now int64) {
	if m.state != Focused || !m.windowFocused || m.lastInput == 0 {
		return
	}
	idleMs := m.cfg.IdleThreshold.Milliseconds()
	if now-m.lastInput <= idleMs {
		return
	}
	m.store.CloseCheckpoint(m.lastInput + idleMs)
	m.state = IdlePaused
}

func (m *Machine) pollBranchLocked(now int64) {
	if m.state != Focused || m.window.ID == "" {
		return
	}
	if now-m.lastBranchPoll < m.cfg.BranchPoll.Milliseconds() {
		return
	}
	m.lastBranchPoll = now

	branch := m.resolveBranchLocked(m.window)
	if branch == m.branch {
		return
	}
	m.branch = branch
	if _, open := m.store.Checkpoint(); open {
		m.store.SwitchCheckpoint(m.window.ID, branch, now)
	}
}

func (m *Machine) heartbeatLocked(now int64) bool {
	if now-m.lastHeartbeat < m.cfg.Heartbeat.Milliseconds() {
		return false
	}
	m.lastHeartbeat = now
	m.store.AdvanceCheckpoint(now)
	return true
}

func (m *Machine) rolloverLocked(now int64) {
	if _, open := m.store.Checkpoint(); !open {
		return
	}
	day := ledger.DayKey(now, m.store.Location())
	if day != m.store.SessionDate() {
		m.store.SetSessionDate(day)
	}
}

// switchProjectLocked flushes the checkpoint for the previous attribution and
// reopens it for the new project, in order, from this caller.
func (m *Machine) switchProjectLocked(project ledger.ProjectRef, now int64) {
	m.window = project
	m.branch = m.resolveBranchLocked(project)
	m.store.RegisterProject(project)
	if m.store.IsPaused() {
		return
	}
	m.store.SwitchCheckpoint(project.ID, m.branch, now)
}

func (m *Machine) openCheckpointLocked(now int64) {
	m.store.RegisterProject(m.window)
	if m.store.IsPaused() {
		return
	}
	m.store.OpenCheckpoint(m.window.ID, m.branch, now)
}

// resolveBranchLocked asks the version-control collaborator for the current
// branch. Absence or failure degrades to the unknown bucket, never an error.
func (m *Machine) resolveBranchLocked(project ledger.ProjectRef) string {
	if m.absent || project.Path == "" {
		return ""
	}
	branch, err := m.resolver.CurrentBranch(project.Path)
	if err != nil {
		m.logf("branch resolution for %s: %v", project.Path, err)
		return ""
	}
	return branch
}

// TogglePause flips manual pause and returns the new paused state. Pausing
// flushes and clears the checkpoint; unpausing reopens one immediately when
// the underlying window state is still focused.
func (m *Machine) TogglePause(now int64) bool {
	m.lock()
	defer m.unlock()

	if m.store.IsPaused() {
		m.store.SetPaused(false)
		if m.state == Focused {
			m.lastInput = now
			m.openCheckpointLocked(now)
		}
		return false
	}

	m.store.CloseCheckpoint(now)
	m.store.SetPaused(true)
	return true
}

// Shutdown flushes the open checkpoint and force-flushes all AI segments
// truncated at now. A checkpoint is never left open across a restart.
func (m *Machine) Shutdown(now int64) {
	m.lock()
	defer m.unlock()

	m.debounce.cancel()
	m.grace.cancel()
	m.store.CloseCheckpoint(now)
	m.store.EndSegmentsAt(now)
	m.state = Unfocused
}

// IsFocused reports whether the machine is actively accounting.
func (m *Machine) IsFocused() bool {
	m.lock()
	defer m.unlock()
	return m.state == Focused
}

// CurrentState returns the machine's tracking state.
func (m *Machine) CurrentState() State {
	m.lock()
	defer m.unlock()
	return m.state
}
