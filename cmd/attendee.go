package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagAddRate   string
	flagAddYearly string
	flagAddRole   string
)

var attendeeCmd = &cobra.Command{
	Use:     "attendee",
	Aliases: []string{"attendees", "a"},
	Short:   "List and edit the saved meeting's attendees",
	RunE:    runAttendeeList,
}

var attendeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendees",
	Args:  cobra.NoArgs,
	RunE:  runAttendeeList,
}

var attendeeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an attendee",
	Long:  "Add an attendee. The rate comes from --rate, --yearly, or a --role preset, else the default rate.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAttendeeAdd,
}

var attendeeRmCmd = &cobra.Command{
	Use:     "rm <id|name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove an attendee",
	Args:    cobra.ExactArgs(1),
	RunE:    runAttendeeRm,
}

var attendeeRenameCmd = &cobra.Command{
	Use:   "rename <id|name> <new-name>",
	Short: "Rename an attendee",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttendeeRename,
}

var attendeeRateCmd = &cobra.Command{
	Use:   "rate <id|name> <hourly>",
	Short: "Set an attendee's hourly rate",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttendeeRate,
}

var attendeeYearlyCmd = &cobra.Command{
	Use:   "yearly <id|name> <salary>",
	Short: "Set an attendee's rate from a yearly salary",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttendeeYearly,
}

func init() {
	attendeeAddCmd.Flags().StringVarP(&flagAddRate, "rate", "r", "", "Hourly rate")
	attendeeAddCmd.Flags().StringVarP(&flagAddYearly, "yearly", "y", "", "Yearly salary")
	attendeeAddCmd.Flags().StringVar(&flagAddRole, "role", "", "Role preset (see `meetcost config`)")
	attendeeAddCmd.MarkFlagsMutuallyExclusive("rate", "yearly", "role")

	attendeeCmd.AddCommand(attendeeListCmd, attendeeAddCmd, attendeeRmCmd,
		attendeeRenameCmd, attendeeRateCmd, attendeeYearlyCmd)
	rootCmd.AddCommand(attendeeCmd)
}

func runAttendeeList(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	list := sess.Attendees()
	if len(list) == 0 {
		fmt.Println("\n  No attendees. Add one with `meetcost attendee add`.")
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(attendeeTable(sess.AnnualHours(), cfg.General.CurrencySymbol, 0, list)))
	return nil
}

func runAttendeeAdd(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	rate, err := addRate(cfg, sess.AnnualHours())
	if err != nil {
		return err
	}
	if name == "" && flagAddRole != "" {
		name = config.RoleTitle(config.NormalizeRoleName(flagAddRole))
	}

	att := sess.AddAttendee(name, rate)
	if err := checkPersist(sess); err != nil {
		return err
	}
	fmt.Printf("  Added %s (%s) at %s\n", att.Name, att.ID, cli.FormatRate(att.Rate.Effective(), cfg.General.CurrencySymbol))
	return nil
}

// addRate resolves the add flags to a rate; nil means the session default.
func addRate(cfg config.Config, annualHours float64) (*model.Rate, error) {
	switch {
	case flagAddRate != "":
		r, err := parseHourly(flagAddRate)
		return &r, err
	case flagAddYearly != "":
		if err := checkAmount("yearly salary", flagAddYearly); err != nil {
			return nil, err
		}
		r, ok := pipeline.ApplyYearlyInput(model.Parsed(0), flagAddYearly, annualHours)
		if !ok {
			return nil, fmt.Errorf("yearly salary needs two decimals or none, got %q", flagAddYearly)
		}
		return &r, nil
	case flagAddRole != "":
		v, ok := cfg.LookupPreset(flagAddRole)
		if !ok {
			return nil, fmt.Errorf("unknown role %q (known: %s)", flagAddRole, strings.Join(cfg.PresetNames(), ", "))
		}
		r := model.Parsed(v)
		return &r, nil
	}
	return nil, nil
}

// parseHourly reads a complete hourly rate, rounded to cents.
func parseHourly(text string) (model.Rate, error) {
	if err := checkAmount("hourly rate", text); err != nil {
		return model.Rate{}, err
	}
	return model.Raw(strings.TrimSpace(text)).Commit(), nil
}

func checkAmount(what, text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%s must be a non-negative number, got %q", what, text)
	}
	return nil
}

func runAttendeeRm(_ *cobra.Command, args []string) error {
	return withAttendee(args[0], func(sess *meeting.Session, att model.Attendee, sym string) (string, error) {
		if err := sess.RemoveAttendee(att.ID); err != nil {
			return "", err
		}
		return "Removed " + att.Name, nil
	})
}

func runAttendeeRename(_ *cobra.Command, args []string) error {
	return withAttendee(args[0], func(sess *meeting.Session, att model.Attendee, sym string) (string, error) {
		if err := sess.RenameAttendee(att.ID, args[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Renamed %s to %s", att.Name, args[1]), nil
	})
}

func runAttendeeRate(_ *cobra.Command, args []string) error {
	r, err := parseHourly(args[1])
	if err != nil {
		return err
	}
	return withAttendee(args[0], func(sess *meeting.Session, att model.Attendee, sym string) (string, error) {
		if err := sess.SetRate(att.ID, r); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s now at %s", att.Name, cli.FormatRate(r.Effective(), sym)), nil
	})
}

func runAttendeeYearly(_ *cobra.Command, args []string) error {
	if err := checkAmount("yearly salary", args[1]); err != nil {
		return err
	}
	return withAttendee(args[0], func(sess *meeting.Session, att model.Attendee, sym string) (string, error) {
		ok, err := sess.SetYearlyInput(att.ID, args[1])
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("yearly salary needs two decimals or none, got %q", args[1])
		}
		updated, err := sess.Attendee(att.ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s now at %s", att.Name, cli.FormatRate(updated.Rate.Effective(), sym)), nil
	})
}

// withAttendee opens the saved session, resolves ref, and applies fn.
func withAttendee(ref string, fn func(*meeting.Session, model.Attendee, string) (string, error)) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	att, err := findAttendee(sess.Attendees(), ref)
	if err != nil {
		return err
	}
	msg, err := fn(sess, att, cfg.General.CurrencySymbol)
	if err != nil {
		return err
	}
	if err := checkPersist(sess); err != nil {
		return err
	}
	fmt.Println("  " + msg)
	return nil
}

var errAmbiguousName = errors.New("more than one attendee has that name; use the ID")

// findAttendee matches ref against IDs (full or as listed), then names
// (case-insensitive).
func findAttendee(list []model.Attendee, ref string) (model.Attendee, error) {
	for _, a := range list {
		if a.ID == ref {
			return a, nil
		}
	}
	for _, a := range list {
		if shortID(a.ID) == ref {
			return a, nil
		}
	}
	var found []model.Attendee
	for _, a := range list {
		if strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(ref)) {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return model.Attendee{}, fmt.Errorf("%q: %w", ref, meeting.ErrAttendeeNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Attendee{}, fmt.Errorf("%q: %w", ref, errAmbiguousName)
	}
}

// attendeeTable lists attendees in roster order. With elapsed > 0 each row
// also shows what that attendee has cost so far.
func attendeeTable(annualHours float64, sym string, elapsed int64, list []model.Attendee) cli.Table {
	total := pipeline.AggregateRate(list)

	headers := []string{"ID", "Name", "Hourly", "Yearly", "Share"}
	if elapsed > 0 {
		headers = append(headers, "Cost")
	}

	rows := make([][]string, 0, len(list)+2)
	for _, a := range list {
		rate := a.Rate.Effective()
		yearly := "-"
		if y, ok := pipeline.YearlyFor(a.Rate, annualHours); ok {
			yearly = strings.TrimSuffix(cli.FormatCurrency(float64(y), sym), ".00")
		}
		share := "-"
		if total > 0 {
			share = cli.FormatPercent(rate / total * 100)
		}
		row := []string{shortID(a.ID), a.Name, cli.FormatRate(rate, sym), yearly, share}
		if elapsed > 0 {
			row = append(row, cli.FormatCurrency(float64(elapsed)*rate/3600, sym))
		}
		rows = append(rows, row)
	}

	rows = append(rows, []string{"---"})
	totalRow := []string{"", "Total", cli.FormatRate(total, sym), "", ""}
	if elapsed > 0 {
		totalRow = append(totalRow, cli.FormatCurrency(float64(elapsed)*total/3600, sym))
	}
	rows = append(rows, totalRow)

	return cli.Table{Headers: headers, Rows: rows}
}

// shortID trims UUIDs to their first block for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
