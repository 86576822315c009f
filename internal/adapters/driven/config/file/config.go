// Package file provides the TOML configuration file for RecallMind.
// Configuration lives at ~/.recallmind/config.toml and is written with
// defaults on first run so users have a file to edit.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultConfigDirName  = ".recallmind"
	DefaultConfigFileName = "config.toml"
	DefaultContentDirName = "content"
	DefaultDataDirName    = "data"
)

// Config is the full RecallMind configuration.
type Config struct {
	// ContentRoot is the notes directory kept indexed.
	ContentRoot string `toml:"content_root"`

	// Extensions are the file extensions to ingest.
	Extensions []string `toml:"extensions"`

	// DataDir holds the vector index database.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ollama    OllamaConfig    `toml:"ollama"`
	Watch     WatchConfig     `toml:"watch"`
}

// ChunkingConfig controls how documents are split.
type ChunkingConfig struct {
	// ChunkSize is the maximum chunk length in bytes.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the number of bytes carried over between chunks.
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls the answer pipeline.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`

	// MinSimilarity drops chunks scoring below this floor.
	MinSimilarity float64 `toml:"min_similarity"`

	// MaxTokens caps the generated answer length.
	MaxTokens int `toml:"max_tokens"`
}

// OllamaConfig points at the local Ollama daemon.
type OllamaConfig struct {
	// BaseURL is the daemon API address.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel and EmbeddingDimensions describe the embedding model.
	EmbeddingModel      string `toml:"embedding_model"`
	EmbeddingDimensions int    `toml:"embedding_dimensions"`

	// LLMModel is the generation model.
	LLMModel string `toml:"llm_model"`

	// EmbedTimeoutSeconds and GenerateTimeoutSeconds are per-request limits.
	EmbedTimeoutSeconds    int `toml:"embed_timeout_seconds"`
	GenerateTimeoutSeconds int `toml:"generate_timeout_seconds"`
}

// WatchConfig controls the directory watcher.
type WatchConfig struct {
	// DebounceMillis is the quiet period after the last filesystem event
	// before a resync is triggered.
	DebounceMillis int `toml:"debounce_millis"`
}

// Default returns the configuration used when no file exists. Paths are
// rooted under the user's home directory.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	base := filepath.Join(home, DefaultConfigDirName)
	return &Config{
		ContentRoot: filepath.Join(base, DefaultContentDirName),
		Extensions:  []string{".md"},
		DataDir:     filepath.Join(base, DefaultDataDirName),
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MinSimilarity: 0,
			MaxTokens:     1024,
		},
		Ollama: OllamaConfig{
			BaseURL:                "http://localhost:11434",
			EmbeddingModel:         "nomic-embed-text",
			EmbeddingDimensions:    768,
			LLMModel:               "llama3.2",
			EmbedTimeoutSeconds:    30,
			GenerateTimeoutSeconds: 120,
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDirName, DefaultConfigFileName), nil
}

// Load reads the config file at path, filling unset fields with defaults.
// If the file does not exist it is created with the default values, so
// first-run users get an editable file.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("writing initial config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyFallbacks()
	return cfg, nil
}

// Save writes the config as TOML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyFallbacks replaces zero values left by a sparse config file.
func (c *Config) applyFallbacks() {
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".md"}
	}
	if c.Chunking.ChunkSize <= 0 {
		c.Chunking.ChunkSize = 1000
	}
	if c.Chunking.Overlap < 0 {
		c.Chunking.Overlap = 0
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.MaxTokens <= 0 {
		c.Retrieval.MaxTokens = 1024
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.EmbeddingModel == "" {
		c.Ollama.EmbeddingModel = "nomic-embed-text"
	}
	if c.Ollama.EmbeddingDimensions <= 0 {
		c.Ollama.EmbeddingDimensions = 768
	}
	if c.Ollama.LLMModel == "" {
		c.Ollama.LLMModel = "llama3.2"
	}
	if c.Ollama.EmbedTimeoutSeconds <= 0 {
		c.Ollama.EmbedTimeoutSeconds = 30
	}
	if c.Ollama.GenerateTimeoutSeconds <= 0 {
		c.Ollama.GenerateTimeoutSeconds = 120
	}
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = 500
	}
}

// Debounce returns the watcher debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}

// EmbedTimeout returns the embedding request timeout as a duration.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.Ollama.EmbedTimeoutSeconds) * time.Second
}

// GenerateTimeout returns the generation request timeout as a duration.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Ollama.GenerateTimeoutSeconds) * time.Second
}
