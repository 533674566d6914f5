//go:build windows

package app

import (
	"context"
	"os"

	"github.com/blackwell-systems/focusledger/internal/focus"
)

// shutdownSignals are the OS signals that trigger graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt}

// watchPauseSignal is a no-op on Windows, which has no SIGUSR1. Pause can
// still be toggled by restarting the daemon with tracking disabled.
func watchPauseSignal(ctx context.Context, m *focus.Machine, logf func(string, ...any)) {
}
