package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/blackwell-systems/focusledger/internal/focus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var trackFeed string

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the tracking daemon",
	Long: `Run the tracking daemon. It reads a JSONL event feed (window focus
changes, input activity, AI tool activity), runs the focus state machine
over it, and persists accounted time to the database on every heartbeat.

Each feed line is one JSON object:
  {"type":"focus","tracked":true,"project":"myapp","path":"/home/me/src/myapp"}
  {"type":"input","kind":"key_down"}
  {"type":"ai","path":"/home/me/src/myapp"}

Send SIGUSR1 to toggle manual pause. SIGINT/SIGTERM shuts down cleanly,
flushing any open checkpoint first.

Examples:
  window-hook | focusledger track          # feed from a producer pipe
  focusledger track --feed /run/fl.events  # feed from a FIFO`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackFeed, "feed", "-", "Event feed path (\"-\" for stdin)")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	db, led, cfg, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logf := log.New(os.Stderr, "focusledger: ", log.LstdFlags).Printf

	persist := func() {
		if err := db.SaveState(led.Snapshot()); err != nil {
			logf("persisting state: %v", err)
		}
	}

	m := focus.New(led, newGitResolver(), focus.Config{
		Debounce:      cfg.Timing.Debounce,
		Grace:         cfg.Timing.Grace,
		IdleThreshold: cfg.Timing.IdleThreshold,
		TickInterval:  cfg.Timing.Tick,
		Heartbeat:     cfg.Timing.Heartbeat,
		BranchPoll:    cfg.Timing.BranchPoll,
		SuspendFactor: cfg.Timing.SuspendFactor,
	}, persist)
	m.SetLogf(logf)

	feed := os.Stdin
	if trackFeed != "-" {
		f, err := os.Open(trackFeed)
		if err != nil {
			return fmt.Errorf("opening event feed: %w", err)
		}
		defer func() { _ = f.Close() }()
		feed = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	watchPauseSignal(ctx, m, logf)

	// The feed reader runs detached so a blocked read cannot stall shutdown.
	events := make(chan Event, 64)
	go readFeed(feed, events, logf)

	if flagVerbose {
		logf("tracking (tick %s, heartbeat %s, db %s)", cfg.Timing.Tick, cfg.Timing.Heartbeat, cfg.DBPath())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ev, ok := <-events:
				if !ok {
					// Feed closed; shut the daemon down.
					stop()
					return nil
				}
				dispatchEvent(ev, m, led)
			}
		}
	})

	err = g.Wait()

	// Run already flushed via Shutdown; write the final state.
	if saveErr := db.SaveState(led.Snapshot()); saveErr != nil {
		return fmt.Errorf("saving final state: %w", saveErr)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
