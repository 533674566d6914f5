package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/focusledger/internal/ledger"
	"github.com/blackwell-systems/focusledger/internal/output"
	"github.com/spf13/cobra"
)

var branchesCmd = &cobra.Command{
	Use:   "branches <project>",
	Short: "Show the per-branch breakdown for a project",
	Long: `Show today's and all-time focus time per branch for one project. Time
recorded while no branch could be resolved appears under <unknown>, computed
as the shortfall between the project total and the named branches.

The project may be given by display name, by path, or by identifier.`,
	Args: cobra.ExactArgs(1),
	RunE: runBranches,
}

func init() {
	rootCmd.AddCommand(branchesCmd)
}

// branchOutput is the JSON-serializable row for the branches command.
type branchOutput struct {
	Branch      string `json:"branch"`
	TodayMillis int64  `json:"today_ms"`
	TotalMillis int64  `json:"total_ms"`
}

func runBranches(cmd *cobra.Command, args []string) error {
	db, led, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	known, err := db.KnownProjects()
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}

	now := time.Now().UnixMilli()
	id, name := resolveProjectArg(args[0], known, led, now)
	if id == "" {
		return fmt.Errorf("unknown project %q", args[0])
	}

	rows := led.BranchesStats(id, now)

	if flagJSON {
		out := make([]branchOutput, 0, len(rows))
		for _, r := range rows {
			out = append(out, branchOutput{
				Branch:      r.Branch,
				TodayMillis: r.TodayMillis,
				TotalMillis: r.TotalMillis,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(rows) == 0 {
		fmt.Printf("No recorded time for %s yet.\n", name)
		return nil
	}

	tbl := output.NewTable("Branch", "Today", "Total").AlignRight(1, 2)
	for _, r := range rows {
		label := r.Branch
		if label == ledger.UnknownBranch {
			label = output.StyleMuted.Render(label)
		}
		tbl.AddRow(label, output.Duration(r.TodayMillis), output.Duration(r.TotalMillis))
	}
	fmt.Println(output.Section(name))
	tbl.Print()
	return nil
}

// resolveProjectArg maps a user-supplied project argument to a ledger
// identifier, matching by identifier, display name, or path against both the
// live project registry and everything with recorded data.
func resolveProjectArg(arg string, known []ledger.ProjectRef, led *ledger.Store, now int64) (id, name string) {
	rows := led.AllProjectsStats(known, now)

	for _, r := range rows {
		if r.Unassigned {
			continue
		}
		if r.ID == arg || r.Name == arg || (r.Path != "" && r.Path == arg) {
			name = r.Name
			if name == "" {
				name = r.ID
			}
			return r.ID, name
		}
	}

	// A path argument may not be registered yet; derive its identifier.
	locID := ledger.LocationID(arg)
	for _, r := range rows {
		if r.ID == locID {
			return locID, arg
		}
	}
	return "", ""
}
