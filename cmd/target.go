package cmd

import (
	"fmt"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"

	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target [minutes|none]",
	Short: "Show or set the target meeting length",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTarget,
}

func init() {
	rootCmd.AddCommand(targetCmd)
}

func runTarget(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		d, err := model.ParseTarget(args[0])
		if err != nil {
			return err
		}
		sess.SetTarget(d)
		if err := checkPersist(sess); err != nil {
			return err
		}
	}

	d := sess.Target()
	fmt.Printf("  Target: %s\n", cli.FormatMinutes(d.Value()))
	if d.Set {
		p := pipeline.ProjectAttendees(sess.Attendees(), 0, d)
		fmt.Printf("  Projected: %s at %s\n",
			cli.FormatCurrency(p.ProjectedCost, cfg.General.CurrencySymbol),
			cli.FormatRate(p.HourlyRate, cfg.General.CurrencySymbol))
	}
	return nil
}
