package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recallmind/recallmind/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the content root and keep the index updated",
	Long: `Runs an initial reconciliation, then watches the content root for
changes. Edits are debounced, so a burst of saves triggers one resync.
Stops on Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bring the index up to date before watching
	cmd.Printf("Syncing %s...\n", cfg.ContentRoot)
	report, err := syncService.Reconcile(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Indexed %d added, %d updated, %d deleted.\n",
		report.Added, report.Updated, report.Deleted)

	w := watcher.New(watcher.Config{
		Root:       cfg.ContentRoot,
		Extensions: cfg.Extensions,
		Debounce:   cfg.Debounce(),
	}, syncService.TriggerResync)

	errCh := make(chan error, 2)
	go func() { errCh <- w.Run(ctx) }()
	go func() { errCh <- syncService.Run(ctx) }()

	cmd.Println("Watching for changes. Press Ctrl-C to stop.")

	err = <-errCh
	stop()
	<-errCh
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
