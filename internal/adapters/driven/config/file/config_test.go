package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesFileOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbeddingModel)

	// The file was written with the defaults
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
content_root = "/notes"
extensions = [".md", ".markdown"]

[chunking]
chunk_size = 500
overlap = 50

[retrieval]
top_k = 8
min_similarity = 0.25

[ollama]
llm_model = "mistral"

[watch]
debounce_millis = 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/notes", cfg.ContentRoot)
	assert.Equal(t, []string{".md", ".markdown"}, cfg.Extensions)
	assert.Equal(t, 500, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.25, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, "mistral", cfg.Ollama.LLMModel)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())

	// Fields the file omits keep their defaults
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbeddingModel)
	assert.Equal(t, 768, cfg.Ollama.EmbeddingDimensions)
}

func TestLoad_SparseFileGetsFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`content_root = "/notes"`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{".md"}, cfg.Extensions)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.EmbedTimeout())
	assert.Equal(t, 120*time.Second, cfg.GenerateTimeout())
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Default()
	require.NoError(t, err)
	cfg.ContentRoot = "/my/notes"
	cfg.Retrieval.TopK = 7

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/my/notes", loaded.ContentRoot)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
}
