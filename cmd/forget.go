package cmd

import (
	"fmt"

	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/store"

	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Drop the saved attendees and target so the next run starts from defaults",
	Long:  "Drop the saved attendees and target so the next run starts from defaults. Meeting history is kept.",
	Args:  cobra.NoArgs,
	RunE:  runForget,
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}

func runForget(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	path := dbPath(cfg)
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	for _, key := range []string{meeting.KeyAttendees, meeting.KeyTargetDuration} {
		if err := db.Delete(key); err != nil {
			return fmt.Errorf("forgetting %s: %w", key, err)
		}
	}
	fmt.Println("  Saved attendees and target cleared.")
	return nil
}
