package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/focusledger/internal/config"
	"github.com/blackwell-systems/focusledger/internal/ledger"
	"github.com/blackwell-systems/focusledger/internal/output"
	"github.com/blackwell-systems/focusledger/internal/store"
)

// openLedger loads configuration, opens the database, and restores the
// persisted ledger state, upgrading legacy identifiers and settling expired
// AI segments before the first query. The caller owns closing the returned
// DB.
func openLedger() (*store.DB, *ledger.Store, *config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	st, err := db.LoadState()
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("loading state: %w", err)
	}

	led := ledger.New(ledger.Options{
		Location:        cfg.Location(),
		AIIdleThreshold: cfg.Timing.AIIdle,
		TemplateProject: cfg.TemplateProject,
	})
	led.Restore(st)
	if !cfg.AITracking {
		led.SetAITracking(false)
	}

	known, err := db.KnownProjects()
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("loading projects: %w", err)
	}
	led.MigrateIdentifiers(known)
	led.FlushExpiredSegments(time.Now().UnixMilli())

	return db, led, cfg, nil
}
