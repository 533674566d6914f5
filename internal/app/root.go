// Package app contains the Cobra command tree for focusledger.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "focusledger",
	Short: "Per-project focus and AI time tracking",
	Long: `focusledger keeps a day-bucketed ledger of focus time and AI activity
per project and branch. A tracking daemon consumes window-focus and input
events, debounces and idle-filters them into accounted time, and persists
daily totals to a local SQLite database.

Run 'focusledger' with no arguments to see today's summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("focusledger", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  track     Run the tracking daemon (reads events from stdin)")
		fmt.Println("  stats     Show focus and AI time totals and daily trends")
		fmt.Println("  projects  Show the per-project breakdown")
		fmt.Println("  branches  Show the per-branch breakdown for a project")
		fmt.Println("  migrate   Upgrade legacy project identifiers in place")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/focusledger/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
