package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/roster"

	"github.com/spf13/cobra"
)

var flagRosterYearly bool

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Import, export, and save attendee rosters (YAML or JSON)",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the attendees with a roster file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return importRoster(args[0])
	},
}

var rosterExportCmd = &cobra.Command{
	Use:   "export <file|->",
	Short: "Write the attendees to a roster file, or YAML on stdout with -",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return exportRoster(args[0])
	},
}

var rosterSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the attendees as a named roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return exportRoster(filepath.Join(rosterDir(), args[0]+".yaml"))
	},
}

var rosterLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load a named roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterLoad,
}

var rosterListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved rosters",
	Args:    cobra.NoArgs,
	RunE:    runRosterList,
}

func init() {
	rosterExportCmd.Flags().BoolVar(&flagRosterYearly, "yearly", false, "Write yearly salaries instead of hourly rates")
	rosterSaveCmd.Flags().BoolVar(&flagRosterYearly, "yearly", false, "Write yearly salaries instead of hourly rates")

	rosterCmd.AddCommand(rosterImportCmd, rosterExportCmd, rosterSaveCmd, rosterLoadCmd, rosterListCmd)
	rootCmd.AddCommand(rosterCmd)
}

func rosterDir() string {
	return filepath.Join(config.ConfigDir(), "rosters")
}

func importRoster(path string) error {
	cfg := loadConfig()

	f, err := roster.ReadFile(path)
	if err != nil {
		return err
	}

	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := roster.Resolve(f, sess.AnnualHours(), cfg.LookupPreset)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	sess.ReplaceAttendees(list)
	if err := checkPersist(sess); err != nil {
		return err
	}
	fmt.Printf("  Loaded %d attendees from %s\n", len(list), path)
	return nil
}

func exportRoster(path string) error {
	cfg := loadConfig()
	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	f := roster.FromAttendees(sess.Attendees(), flagRosterYearly, sess.AnnualHours())
	if path == "-" {
		return roster.Encode(os.Stdout, f, roster.FormatYAML)
	}
	if err := roster.WriteFile(path, f); err != nil {
		return err
	}
	fmt.Printf("  Wrote %d attendees to %s\n", len(f.Attendees), path)
	return nil
}

func runRosterLoad(_ *cobra.Command, args []string) error {
	saved, ok, err := roster.Find(rosterDir(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no saved roster named " + args[0] + " (see `meetcost roster ls`)")
	}
	return importRoster(saved.Path)
}

func runRosterList(_ *cobra.Command, _ []string) error {
	all, err := roster.ScanDir(rosterDir())
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Printf("  No saved rosters in %s\n", rosterDir())
		return nil
	}
	for _, s := range all {
		fmt.Printf("  %-20s %s\n", s.Name, s.Path)
	}
	return nil
}
