package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/focusledger/internal/ledger"
	"github.com/blackwell-systems/focusledger/internal/output"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Show the per-project breakdown",
	Long: `Show today's and all-time focus and AI time for every project with
recorded data. Time that could not be attributed to any project appears as
a synthetic (Unassigned) row.`,
	RunE: runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

// projectOutput is the JSON-serializable row for the projects command.
type projectOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	TodayMillis int64  `json:"today_ms"`
	TotalMillis int64  `json:"total_ms"`
	AIToday     int64  `json:"ai_today_ms"`
	AITotal     int64  `json:"ai_total_ms"`
	Active      bool   `json:"active,omitempty"`
	Unassigned  bool   `json:"unassigned,omitempty"`
}

func runProjects(cmd *cobra.Command, args []string) error {
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
	rows := led.AllProjectsStats(known, now)

	if flagJSON {
		out := make([]projectOutput, 0, len(rows))
		for _, r := range rows {
			out = append(out, projectOutput{
				ID:          r.ID,
				Name:        r.Name,
				Path:        r.Path,
				TodayMillis: r.TodayMillis,
				TotalMillis: r.TotalMillis,
				AIToday:     r.AIToday,
				AITotal:     r.AITotal,
				Active:      r.Active,
				Unassigned:  r.Unassigned,
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
		fmt.Println("No recorded time yet.")
		return nil
	}

	tbl := output.NewTable("Project", "Today", "Total", "AI Today", "AI Total").
		AlignRight(1, 2, 3, 4)
	for _, r := range rows {
		tbl.AddRow(
			projectLabel(r),
			output.Duration(r.TodayMillis),
			output.Duration(r.TotalMillis),
			output.Duration(r.AIToday),
			output.Duration(r.AITotal),
		)
	}
	fmt.Println(output.Section("Projects"))
	tbl.Print()
	return nil
}

// projectLabel renders the display name of a project row, marking the
// active project and styling the unassigned one.
func projectLabel(r ledger.ProjectStats) string {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	if r.Unassigned {
		return output.StyleWarning.Render(name)
	}
	if r.Active {
		return output.StyleFocus.Render(name + " *")
	}
	return name
}
