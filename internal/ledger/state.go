package ledger

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// UnknownBranch is the branch bucket absorbing project time that cannot be
// attributed to a resolved branch.
const UnknownBranch = "<unknown>"

// Project identifier prefixes. Legacy identifiers are keyed by display name;
// current identifiers are keyed by a hash of the project location.
const (
	namePrefix = "name:"
	locPrefix  = "loc:"
)

// NameID returns the legacy name-based identifier for a display name.
func NameID(displayName string) string {
	return namePrefix + displayName
}

// LocationID returns the location-based identifier for a project path.
func LocationID(path string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return fmt.Sprintf("%s%08x", locPrefix, h.Sum32())
}

// HasKnownPrefix reports whether id is already in one of the tagged forms.
func HasKnownPrefix(id string) bool {
	return strings.HasPrefix(id, namePrefix) || strings.HasPrefix(id, locPrefix)
}

// IsLocationID reports whether id is a location-based identifier.
func IsLocationID(id string) bool {
	return strings.HasPrefix(id, locPrefix)
}

// ProjectRef identifies a live project known to the caller. ID is the tagged
// identifier; Name and Path are best-effort display metadata, never
// authoritative for equality.
type ProjectRef struct {
	ID   string
	Name string
	Path string
}

// Checkpoint is the open, not-yet-flushed focused-time interval. At most one
// exists; absence (nil) means no tracking is in progress.
type Checkpoint struct {
	Start   int64
	Project string
	Branch  string
}

// Segment is an open, idle-extensible AI-activity interval for one project.
// End is continuously pushed forward to lastActivity+idleThreshold while
// activity keeps arriving inside the window.
type Segment struct {
	Start int64
	End   int64
}

// State is the aggregate root of the persisted ledger schema: all day-bucketed
// totals, the side tables, the open checkpoint and segments, and the session
// bookkeeping flags.
type State struct {
	FocusDaily   map[string]int64                       // day -> ms
	AIDaily      map[string]int64                       // day -> ms
	ProjectFocus map[string]map[string]int64            // project -> day -> ms
	ProjectAI    map[string]map[string]int64            // project -> day -> ms
	BranchFocus  map[string]map[string]map[string]int64 // project -> branch -> day -> ms
	ProjectNames map[string]string                      // project -> display name
	ProjectPaths map[string]string                      // project -> filesystem path

	Checkpoint *Checkpoint
	Segments   map[string]*Segment // project -> open AI segment

	Paused      bool
	SessionDate string // day key of the last checkpoint open, for diagnostics
	AITracking  bool
}

// NewState returns an empty State with all maps allocated and AI tracking on.
func NewState() *State {
	return &State{
		FocusDaily:   make(map[string]int64),
		AIDaily:      make(map[string]int64),
		ProjectFocus: make(map[string]map[string]int64),
		ProjectAI:    make(map[string]map[string]int64),
		BranchFocus:  make(map[string]map[string]map[string]int64),
		ProjectNames: make(map[string]string),
		ProjectPaths: make(map[string]string),
		Segments:     make(map[string]*Segment),
		AITracking:   true,
	}
}

// clone returns a deep copy of the state.
func (st *State) clone() *State {
	c := NewState()
	for k, v := range st.FocusDaily {
		c.FocusDaily[k] = v
	}
	for k, v := range st.AIDaily {
		c.AIDaily[k] = v
	}
	for p, days := range st.ProjectFocus {
		c.ProjectFocus[p] = copyDayMap(days)
	}
	for p, days := range st.ProjectAI {
		c.ProjectAI[p] = copyDayMap(days)
	}
	for p, branches := range st.BranchFocus {
		bc := make(map[string]map[string]int64, len(branches))
		for b, days := range branches {
			bc[b] = copyDayMap(days)
		}
		c.BranchFocus[p] = bc
	}
	for k, v := range st.ProjectNames {
		c.ProjectNames[k] = v
	}
	for k, v := range st.ProjectPaths {
		c.ProjectPaths[k] = v
	}
	if st.Checkpoint != nil {
		cp := *st.Checkpoint
		c.Checkpoint = &cp
	}
	for p, seg := range st.Segments {
		s := *seg
		c.Segments[p] = &s
	}
	c.Paused = st.Paused
	c.SessionDate = st.SessionDate
	c.AITracking = st.AITracking
	return c
}

func copyDayMap(m map[string]int64) map[string]int64 {
	c := make(map[string]int64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
