// Package cli provides the RecallMind command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/recallmind/recallmind/internal/adapters/driven/config/file"
	embeddingollama "github.com/recallmind/recallmind/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/recallmind/recallmind/internal/adapters/driven/llm/ollama"
	"github.com/recallmind/recallmind/internal/adapters/driven/storage/sqlite"
	"github.com/recallmind/recallmind/internal/chunker"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
	"github.com/recallmind/recallmind/internal/core/ports/driving"
	"github.com/recallmind/recallmind/internal/core/services"
	"github.com/recallmind/recallmind/internal/logger"
)

// version is set via ldflags at build time.
var version = "dev"

// Flag values.
var (
	configPath  string
	verboseMode bool
)

// Wired services, populated by initServices.
var (
	cfg              *configfile.Config
	index            driven.VectorIndex
	embedder         driven.EmbeddingService
	llm              driven.LLMService
	syncService      driving.SyncService
	assistantService driving.AssistantService
)

var rootCmd = &cobra.Command{
	Use:   "recallmind",
	Short: "A personal study assistant over your markdown notes",
	Long: `RecallMind keeps a folder of markdown notes indexed for semantic
search and answers natural-language questions from their content.

Notes live under the content root (default ~/.recallmind/content).
Run "recallmind sync" after editing notes, or "recallmind watch" to
keep the index updated automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verboseMode)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.recallmind/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices loads configuration and wires the service graph. Commands
// that touch the index or the models call this once at the start of RunE.
func initServices() error {
	if cfg != nil {
		return nil
	}

	loaded, err := configfile.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := bootstrapContentRoot(loaded.ContentRoot); err != nil {
		return fmt.Errorf("preparing content root: %w", err)
	}

	store, err := sqlite.NewStore(loaded.DataDir)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}

	embedder = embeddingollama.NewEmbeddingService(embeddingollama.Config{
		BaseURL:    loaded.Ollama.BaseURL,
		Model:      loaded.Ollama.EmbeddingModel,
		Dimensions: loaded.Ollama.EmbeddingDimensions,
		Timeout:    loaded.EmbedTimeout(),
	})
	llm = llmollama.NewLLMService(llmollama.Config{
		BaseURL: loaded.Ollama.BaseURL,
		Model:   loaded.Ollama.LLMModel,
		Timeout: loaded.GenerateTimeout(),
	})

	splitter := chunker.New(
		chunker.WithChunkSize(loaded.Chunking.ChunkSize),
		chunker.WithOverlap(loaded.Chunking.Overlap),
	)

	cfg = loaded
	index = store
	syncService = services.NewSyncEngine(services.SyncEngineConfig{
		Root:       loaded.ContentRoot,
		Extensions: loaded.Extensions,
		Chunker:    splitter,
		Embedder:   embedder,
		Index:      store,
	})
	assistantService = services.NewAssistant(services.AssistantConfig{
		Embedder:      embedder,
		Index:         store,
		LLM:           llm,
		TopK:          loaded.Retrieval.TopK,
		MinSimilarity: loaded.Retrieval.MinSimilarity,
		MaxTokens:     loaded.Retrieval.MaxTokens,
	})

	logger.Debug("services wired (content root %s, index %s)", loaded.ContentRoot, store.Path())
	return nil
}

func closeServices() {
	if index != nil {
		index.Close() //nolint:errcheck
	}
}

// welcomeNote is written on first run so a fresh install has something
// to index and query.
const welcomeNote = `# Welcome to RecallMind

This is your personal study assistant powered by local AI and vector search.

## Getting Started

1. Add your study materials as markdown files in this directory
2. Run ` + "`recallmind sync`" + ` to index them
3. Ask questions with ` + "`recallmind ask \"your question\"`" + `
4. Keep the index fresh automatically with ` + "`recallmind watch`" + `

Happy studying!
`

// bootstrapContentRoot creates the content root on first run and seeds it
// with a welcome note when it contains no markdown at all.
func bootstrapContentRoot(root string) error {
	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("content root %s is not a directory", root)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	welcome := filepath.Join(root, "welcome.md")
	if err := os.WriteFile(welcome, []byte(welcomeNote), 0644); err != nil {
		return err
	}
	logger.Info("created content root %s with a welcome note", root)
	return nil
}
