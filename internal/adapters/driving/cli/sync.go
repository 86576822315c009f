package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the index with the content root",
	Long: `Scans the content root, compares it against the indexed sources
and ingests new or modified notes, removing entries for deleted files.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	cmd.Printf("Syncing %s...\n", cfg.ContentRoot)

	report, err := syncService.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Done in %s: %d added, %d updated, %d deleted, %d unchanged.\n",
		report.Duration.Round(time.Millisecond),
		report.Added, report.Updated, report.Deleted, report.Unchanged)
	for _, warning := range report.Warnings {
		cmd.Printf("  warning: %s\n", warning)
	}
	return nil
}
