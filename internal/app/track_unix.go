//go:build !windows

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackwell-systems/focusledger/internal/focus"
)

// shutdownSignals are the OS signals that trigger graceful shutdown.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// watchPauseSignal toggles manual pause on SIGUSR1 until ctx is done.
func watchPauseSignal(ctx context.Context, m *focus.Machine, logf func(string, ...any)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if m.TogglePause(time.Now().UnixMilli()) {
					logf("tracking paused")
				} else {
					logf("tracking resumed")
				}
			}
		}
	}()
}
