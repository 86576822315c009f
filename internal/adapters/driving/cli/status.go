package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Long:  `Prints the number of indexed sources and chunks and the result of the last sync.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	status, err := syncService.Status(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Content root: %s\n", cfg.ContentRoot)
	cmd.Printf("Sources:      %d\n", status.SourceCount)
	cmd.Printf("Chunks:       %d\n", status.ChunkCount)
	cmd.Printf("Embedding:    %s (%s)\n", embedder.ModelName(), pingState(cmd.Context(), embedder.Ping))
	cmd.Printf("Generation:   %s (%s)\n", llm.ModelName(), pingState(cmd.Context(), llm.Ping))
	if status.LastSyncTime.IsZero() {
		cmd.Println("Last sync:    never (this session)")
	} else {
		cmd.Printf("Last sync:    %s\n", status.LastSyncTime.Local().Format("2006-01-02 15:04:05"))
	}
	for _, e := range status.LastSyncErrors {
		cmd.Printf("  warning: %s\n", e)
	}
	return nil
}

func pingState(ctx context.Context, ping func(context.Context) error) string {
	if err := ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
