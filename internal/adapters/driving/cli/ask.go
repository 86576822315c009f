package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your notes",
	Long: `Embeds the question, retrieves the most relevant chunks from the
index and generates a grounded answer, citing the source files used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}

	question := strings.Join(args, " ")

	answer, err := assistantService.Answer(cmd.Context(), question)
	if err != nil {
		return err
	}

	cmd.Println(answer.Text)
	if len(answer.Citations) > 0 {
		cmd.Println("\nSources:")
		for _, path := range answer.Citations {
			cmd.Printf("  - %s\n", path)
		}
	}
	return nil
}
