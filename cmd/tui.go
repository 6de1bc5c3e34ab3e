package cmd

import (
	"fmt"

	"github.com/theirongolddev/meetcost/internal/logging"
	"github.com/theirongolddev/meetcost/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive meeting timer (default)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	restore := logging.RedirectToFile()
	defer restore()

	db, sess, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(sess, tui.Options{Config: cfg, History: db})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, runErr := p.Run()

	// Quitting mid-meeting still records it.
	if rec, ok := sess.Finish(); ok {
		logging.Default().Info("recorded meeting", "id", rec.ID, "elapsed", rec.ElapsedSecs, "cost", rec.TotalCost)
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
