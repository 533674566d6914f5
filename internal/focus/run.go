package focus

import (
	"context"
	"time"
)

// Run drives the machine with periodic ticks until ctx is cancelled, then
// performs a final shutdown flush. Blocks for the lifetime of the tracker.
func (m *Machine) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown(time.Now().UnixMilli())
			return ctx.Err()
		case t := <-ticker.C:
			m.Tick(t.UnixMilli())
		}
	}
}
