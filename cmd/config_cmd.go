// Package cmd implements the meetcost CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/tui/theme"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sym := cfg.General.CurrencySymbol

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Annual hours:    %s\n", cli.FormatNumber(int64(cfg.AnnualHours())))
	fmt.Printf("    Default rate:    %s\n", cli.FormatRate(cfg.General.DefaultRate, sym))
	fmt.Printf("    Currency symbol: %s\n", sym)
	fmt.Printf("    State database:  %s\n", dbPath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s  (%s)\n", cfg.Appearance.Theme, strings.Join(theme.Names(), ", "))
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:       %s\n", cfg.Serve.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Serve.EventsBuffer)
	fmt.Printf("    Rate limit:    %.1f req/s, burst %d\n", cfg.Serve.RequestsPerSecond, cfg.Serve.Burst)
	if len(cfg.Serve.AllowedOrigins) > 0 {
		fmt.Printf("    CORS origins:  %s\n", strings.Join(cfg.Serve.AllowedOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  [Presets]")
	for _, name := range cfg.PresetNames() {
		v, _ := cfg.LookupPreset(name)
		fmt.Printf("    %-16s %s\n", name, cli.FormatRate(v, sym))
	}
	fmt.Println()

	fmt.Println("  [Reality checks]")
	for _, rc := range cfg.RealityCheckTable() {
		fmt.Printf("    %12s  %s\n", cli.FormatCurrency(rc.Threshold, sym), rc.Label)
	}
	fmt.Println()

	fmt.Printf("  Environment overrides: %s, %s, %s\n", config.EnvTheme, config.EnvDB, config.EnvAnnualHours)
	return nil
}
