// Package focus derives focused/idle/paused/suspended states from raw window
// and input signals and drives checkpoint flushes into the ledger. It owns
// when a tracking interval opens and closes and which project and branch it is
// attributed to.
package focus

import "github.com/blackwell-systems/focusledger/internal/ledger"

// InputKind classifies a raw input event.
type InputKind string

const (
	KeyDown    InputKind = "key_down"
	MouseDown  InputKind = "mouse_down"
	MouseUp    InputKind = "mouse_up"
	MouseClick InputKind = "mouse_click"
	MouseDrag  InputKind = "mouse_drag"
	MouseWheel InputKind = "mouse_wheel"
	MouseMove  InputKind = "mouse_move"
	MouseEnter InputKind = "mouse_enter"
	MouseLeave InputKind = "mouse_leave"
)

// Meaningful reports whether the event signals user intent. Pointer movement
// and hover transitions happen without intent and never count as activity.
func (k InputKind) Meaningful() bool {
	switch k {
	case KeyDown, MouseDown, MouseUp, MouseClick, MouseDrag, MouseWheel:
		return true
	default:
		return false
	}
}

// InputEvent is one raw input signal.
type InputEvent struct {
	Kind InputKind
}

// Window describes a foreground-window change. Tracked is false when the
// foreground moved to anything other than the tracked application.
type Window struct {
	Tracked bool
	Project ledger.ProjectRef // zero when the project cannot be resolved
}

// BranchResolver answers "current branch name" for a project path.
// Best-effort: an error or empty result degrades to the unknown branch, and
// the collaborator may be absent entirely (nil), which is checked once and
// cached.
type BranchResolver interface {
	CurrentBranch(path string) (string, error)
}
