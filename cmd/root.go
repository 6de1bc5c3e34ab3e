package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/logging"
	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/store"
	"github.com/theirongolddev/meetcost/internal/tui/theme"

	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "meetcost",
	Short: "Live meeting cost calculator",
	Long:  "Track what a meeting costs while it runs: attendee rates, a running clock, and a projection for the target length.",
	RunE:  runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		switch {
		case flagQuiet:
			logging.SetQuiet()
		case flagVerbose:
			logging.SetVerbose(true)
		}
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "State database path (default "+store.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

// loadConfig reads the config file. A broken file is reported and the
// defaults are used so every command still runs.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Warn("using default config", "err", err)
		return config.DefaultConfig()
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg
}

func dbPath(cfg config.Config) string {
	switch {
	case flagDB != "":
		return flagDB
	case cfg.General.StateDB != "":
		return cfg.General.StateDB
	default:
		return store.DefaultPath()
	}
}

// openState opens the state database and loads the saved meeting from it.
// The caller closes the returned DB.
func openState(cfg config.Config) (*store.DB, *meeting.Session, error) {
	path := dbPath(cfg)
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	logging.Default().Debug("state database", "path", path)

	sess := meeting.Load(db, meeting.Options{
		DefaultRate:   cfg.General.DefaultRate,
		AnnualHours:   cfg.AnnualHours(),
		RealityChecks: cfg.RealityCheckTable(),
		History:       db,
		Logger:        logging.Default(),
	})
	return db, sess, nil
}

// checkPersist surfaces a failed save after a mutating command.
func checkPersist(sess *meeting.Session) error {
	if err := sess.PersistErr(); err != nil {
		return fmt.Errorf("state not saved: %w", err)
	}
	return nil
}
