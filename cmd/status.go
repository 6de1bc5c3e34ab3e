package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagStatusElapsed time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved meeting: attendees, rate, and projected cost",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().DurationVarP(&flagStatusElapsed, "elapsed", "e", 0, "What-if: cost after this much time (e.g. 45m)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sym := cfg.General.CurrencySymbol
	elapsed := int64(flagStatusElapsed / time.Second)
	attendees := sess.Attendees()
	p := pipeline.ProjectAttendees(attendees, elapsed, sess.Target())

	fmt.Println()
	fmt.Println(cli.RenderTitle("MEETING COST"))
	fmt.Println()

	if len(attendees) == 0 {
		fmt.Println("  Nobody in this meeting. Add someone with `meetcost attendee add`.")
		fmt.Println()
	}

	items := []cli.KV{
		{Label: "Attendees", Value: cli.FormatNumber(int64(len(attendees)))},
		{Label: "Combined rate", Value: cli.FormatRate(p.HourlyRate, sym)},
		{Label: "Per minute", Value: cli.FormatCurrency(p.PerMinute, sym)},
		{Label: "Target", Value: cli.FormatMinutes(p.TargetMinutes)},
	}
	if p.TargetMinutes > 0 {
		items = append(items, cli.KV{Label: "Projected", Value: cli.FormatCurrency(p.ProjectedCost, sym)})
	}
	fmt.Print(cli.RenderSummary(items))

	if elapsed > 0 {
		tier := pipeline.TierFor(p.CurrentCost).String()
		fmt.Println()
		fmt.Print(cli.RenderSummary([]cli.KV{
			{Label: "After " + cli.FormatElapsed(elapsed), Value: cli.RenderCost(cli.FormatCurrency(p.CurrentCost, sym), tier)},
		}))
		if p.TargetMinutes > 0 {
			fmt.Printf("  %s  %s\n", cli.RenderProgressBar(p.ProgressPercent, 30),
				cli.RenderMuted(cli.FormatDelta(p.CurrentCost, p.ProjectedCost, sym)+" vs target"))
		}
		if rc, ok := pipeline.LookupRealityCheck(sess.RealityChecks(), p.CurrentCost); ok {
			fmt.Printf("  %s\n", cli.RenderMuted("That's about "+rc.Label+"."))
		}
	}

	if len(attendees) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(attendeeTable(sess.AnnualHours(), sym, elapsed, attendees)))

		shares := pipeline.AggregateShares(attendees, elapsed)
		if len(shares) > 1 && p.HourlyRate > 0 {
			fmt.Println()
			fmt.Println(cli.RenderMuted("  Share of the bill"))
			top := shares[0].SharePercent
			for _, s := range shares {
				label := s.Name
				if r := []rune(label); len(r) > 16 {
					label = string(r[:15]) + "…"
				}
				fmt.Printf("%s %s\n", cli.RenderHorizontalBar(label, s.SharePercent, top, 30),
					cli.RenderMuted(cli.FormatPercent(s.SharePercent)))
			}
		}
	}
	return nil
}
