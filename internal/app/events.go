package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/blackwell-systems/focusledger/internal/focus"
	"github.com/blackwell-systems/focusledger/internal/ledger"
)

// Event is one line of the JSONL event feed consumed by the track daemon.
// Producers are window-manager hooks, editor plugins, and AI tool wrappers.
type Event struct {
	// Type is "focus", "input", or "ai".
	Type string `json:"type"`

	// At is the event time in Unix milliseconds. Zero means "now".
	At int64 `json:"at,omitempty"`

	// Tracked marks a focus event as landing on a tracked window.
	Tracked bool `json:"tracked,omitempty"`

	// Project and Path describe the window's project for focus events,
	// or an explicit attribution target for ai events.
	Project string `json:"project,omitempty"`
	Path    string `json:"path,omitempty"`

	// Kind is the input kind for input events (key_down, mouse_click, ...).
	Kind string `json:"kind,omitempty"`
}

// parseEvent decodes and validates one feed line.
func parseEvent(line []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, err
	}
	switch ev.Type {
	case "focus", "input", "ai":
	case "":
		return Event{}, fmt.Errorf("event missing type")
	default:
		return Event{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}

// projectRef builds the ledger reference for an event's project fields.
// A path yields a stable location identifier; a bare name falls back to
// the name-derived one.
func (ev Event) projectRef() ledger.ProjectRef {
	ref := ledger.ProjectRef{Name: ev.Project, Path: ev.Path}
	if ev.Path != "" {
		ref.ID = ledger.LocationID(ev.Path)
	} else if ev.Project != "" {
		ref.ID = ledger.NameID(ev.Project)
	}
	return ref
}

// readFeed scans the JSONL feed and delivers parsed events on the channel,
// closing it at EOF. Malformed lines are logged and skipped. The read itself
// can block indefinitely, which is why this runs detached from the daemon's
// shutdown path.
func readFeed(r io.Reader, events chan<- Event, logf func(string, ...any)) {
	defer close(events)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := parseEvent(line)
		if err != nil {
			logf("skipping feed line: %v", err)
			continue
		}
		events <- ev
	}
	if err := sc.Err(); err != nil {
		logf("event feed read error: %v", err)
	}
}

// dispatchEvent routes one feed event to the machine or the ledger.
func dispatchEvent(ev Event, m *focus.Machine, led *ledger.Store) {
	at := ev.At
	if at == 0 {
		at = time.Now().UnixMilli()
	}

	switch ev.Type {
	case "focus":
		win := focus.Window{Tracked: ev.Tracked}
		if ev.Tracked {
			win.Project = ev.projectRef()
		}
		m.HandleForeground(win, at)
	case "input":
		m.HandleInput(focus.InputEvent{Kind: focus.InputKind(ev.Kind)}, at)
	case "ai":
		project := ev.projectRef().ID
		if project == "" {
			// Unattributed AI activity lands on the active project.
			if cp, ok := led.Checkpoint(); ok {
				project = cp.Project
			}
		}
		led.RecordAIActivity(project, at)
	}
}
