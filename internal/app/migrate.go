package app

import (
	"fmt"

	"github.com/blackwell-systems/focusledger/internal/config"
	"github.com/blackwell-systems/focusledger/internal/ledger"
	"github.com/blackwell-systems/focusledger/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade legacy project identifiers in place",
	Long: `Rewrite legacy project identifiers to the current scheme. Untagged
identifiers become name-derived ones, and name-derived identifiers of
projects that now carry a path are promoted to location-derived ones,
merging recorded time where both forms exist.

Running it more than once is harmless; every command also performs the same
upgrade when it loads the database, but only this one persists the result.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// runMigrate opens the database without the shared load path so the
// migration's work is observable and reportable.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	st, err := db.LoadState()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	led := ledger.New(ledger.Options{
		Location:        cfg.Location(),
		AIIdleThreshold: cfg.Timing.AIIdle,
		TemplateProject: cfg.TemplateProject,
	})
	led.Restore(st)

	known, err := db.KnownProjects()
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}

	migrated := led.MigrateIdentifiers(known)
	if len(migrated) == 0 {
		fmt.Println("Identifiers already current.")
		return nil
	}

	if err := db.SaveState(led.Snapshot()); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	fmt.Printf("Migrated %d identifier(s):\n", len(migrated))
	for _, id := range migrated {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
