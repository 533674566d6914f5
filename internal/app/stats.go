package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/focusledger/internal/output"
	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus and AI time totals and daily trends",
	Long: `Show today's and all-time focus and AI totals, plus a per-day trend
over the recent period.

Examples:
  focusledger stats             # totals plus the last 7 days
  focusledger stats --days 30   # last 30 days
  focusledger stats --json      # machine-readable output`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Number of recent days in the trend")
	rootCmd.AddCommand(statsCmd)
}

// statsOutput is the JSON-serializable output for the stats command.
type statsOutput struct {
	TodayFocusMillis int64            `json:"today_focus_ms"`
	TotalFocusMillis int64            `json:"total_focus_ms"`
	TodayAIMillis    int64            `json:"today_ai_ms"`
	TotalAIMillis    int64            `json:"total_ai_ms"`
	Paused           bool             `json:"paused"`
	Days             []statsDayOutput `json:"days"`
}

type statsDayOutput struct {
	Day         string `json:"day"`
	FocusMillis int64  `json:"focus_ms"`
	AIMillis    int64  `json:"ai_ms"`
}

func runStats(cmd *cobra.Command, args []string) error {
	db, led, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if statsDays < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", statsDays)
	}

	now := time.Now().UnixMilli()
	focusDays := led.PeriodFocus(statsDays, now)
	aiDays := led.PeriodAI(statsDays, now)

	out := statsOutput{
		TodayFocusMillis: led.TodayFocus(now),
		TotalFocusMillis: led.TotalFocus(now),
		TodayAIMillis:    led.TodayAI(now),
		TotalAIMillis:    led.TotalAI(now),
		Paused:           led.IsPaused(),
	}
	for i, d := range focusDays {
		out.Days = append(out.Days, statsDayOutput{
			Day:         d.Day,
			FocusMillis: d.Millis,
			AIMillis:    aiDays[i].Millis,
		})
	}

	if flagJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	renderStatsTotals(out)
	renderStatsTrend(out.Days)
	return nil
}

func renderStatsTotals(out statsOutput) {
	fmt.Println(output.Section("Totals"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Focus today"),
		output.StyleValue.Render(output.Duration(out.TodayFocusMillis)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Focus all time"),
		output.StyleValue.Render(output.Duration(out.TotalFocusMillis)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("AI today"),
		output.StyleValue.Render(output.Duration(out.TodayAIMillis)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("AI all time"),
		output.StyleValue.Render(output.Duration(out.TotalAIMillis)))

	if out.Paused {
		fmt.Printf(" %s\n", output.StyleWarning.Render("tracking is paused"))
	}
	fmt.Println()
}

func renderStatsTrend(days []statsDayOutput) {
	fmt.Println(output.Section(fmt.Sprintf("Last %d Days", len(days))))

	var maxMs int64
	for _, d := range days {
		if d.FocusMillis > maxMs {
			maxMs = d.FocusMillis
		}
	}

	for _, d := range days {
		fmt.Printf(" %s  %s  %s\n",
			output.StyleMuted.Render(d.Day),
			output.DayBar(d.FocusMillis, maxMs, 20),
			output.Duration(d.FocusMillis))
	}
	fmt.Println()
}
