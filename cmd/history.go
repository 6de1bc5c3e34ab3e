package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/model"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagHistoryFormat string
	flagHistoryLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded meetings, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded meeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.Flags().StringVarP(&flagHistoryFormat, "format", "f", "table", "Output format: table, json, yaml")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Max meetings to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	switch flagHistoryFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", flagHistoryFormat)
	}

	cfg := loadConfig()
	db, _, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	meetings, err := db.ListMeetings(flagHistoryLimit)
	if err != nil {
		return err
	}
	if meetings == nil {
		meetings = []model.MeetingRecord{}
	}

	switch flagHistoryFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meetings)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(meetings); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(meetings) == 0 {
		fmt.Println("\n  No meetings recorded yet.")
		return nil
	}

	sym := cfg.General.CurrencySymbol
	var totalCost float64
	var totalSecs int64
	costs := make([]float64, len(meetings))
	rows := make([][]string, 0, len(meetings))
	for i, m := range meetings {
		totalCost += m.TotalCost
		totalSecs += m.ElapsedSecs
		costs[len(meetings)-1-i] = m.TotalCost
		rows = append(rows, []string{
			shortID(m.ID),
			m.EndedAt.Local().Format("2006-01-02 15:04"),
			cli.FormatElapsed(m.ElapsedSecs),
			fmt.Sprintf("%d", m.Attendees),
			cli.FormatRate(m.HourlyRate, sym),
			cli.FormatCurrency(m.TotalCost, sym),
			cli.FormatMinutes(m.TargetMinutes),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MEETING HISTORY  Last %d", len(meetings))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Ended", "Length", "People", "Rate", "Cost", "Target"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Print(cli.RenderSummary([]cli.KV{
		{Label: "Total cost", Value: cli.FormatCurrency(totalCost, sym)},
		{Label: "Time spent", Value: cli.FormatDuration(totalSecs)},
		{Label: "Trend", Value: cli.RenderSparkline(costs)},
	}))

	if n, err := db.MeetingCount(); err == nil && n > len(meetings) {
		fmt.Println()
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Showing %d of %d. Use --limit 0 for all.", len(meetings), n)))
	}
	return nil
}

func runHistoryRm(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	db, _, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := db.ListMeetings(0)
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.ID == args[0] || shortID(m.ID) == args[0] {
			if err := db.DeleteMeeting(m.ID); err != nil {
				return fmt.Errorf("deleting meeting: %w", err)
			}
			fmt.Printf("  Deleted meeting %s (%s)\n", shortID(m.ID), cli.FormatCurrency(m.TotalCost, cfg.General.CurrencySymbol))
			return nil
		}
	}
	return fmt.Errorf("no recorded meeting %q", args[0])
}
