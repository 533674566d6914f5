package focus

// timer is a named, cancellable deadline checked from the periodic tick. Arm,
// cancel, and fire all happen under the machine mutex, so a superseded timer
// can never fire after the state has moved on.
type timer struct {
	deadline int64
	armed    bool
}

func (t *timer) arm(deadline int64) {
	t.deadline = deadline
	t.armed = true
}

func (t *timer) cancel() {
	t.armed = false
}

// fire reports whether the armed deadline has passed, disarming it when so.
// Fires at most once per arm.
func (t *timer) fire(now int64) bool {
	if !t.armed || now < t.deadline {
		return false
	}
	t.armed = false
	return true
}
