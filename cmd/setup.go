package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	themeName := cfg.Appearance.Theme
	hours := strconv.FormatFloat(cfg.AnnualHours(), 'f', -1, 64)
	rate := strconv.FormatFloat(cfg.General.DefaultRate, 'f', -1, 64)
	currency := cfg.General.CurrencySymbol

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	fmt.Println()
	fmt.Println("  Welcome to meetcost!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
			huh.NewInput().
				Title("Working hours per year").
				Description("Turns hourly rates into yearly salaries.").
				Value(&hours).
				Validate(positiveNumber("annual hours")),
			huh.NewInput().
				Title("Default hourly rate").
				Description("Given to attendees added without a rate.").
				Value(&rate).
				Validate(positiveNumber("default rate")),
			huh.NewInput().
				Title("Currency symbol").
				Value(&currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("currency symbol cannot be empty")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	cfg.Appearance.Theme = themeName
	cfg.General.AnnualHours, _ = strconv.ParseFloat(strings.TrimSpace(hours), 64)
	cfg.General.DefaultRate, _ = strconv.ParseFloat(strings.TrimSpace(rate), 64)
	cfg.General.CurrencySymbol = strings.TrimSpace(currency)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `meetcost setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func positiveNumber(what string) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive number", what)
		}
		return nil
	}
}
