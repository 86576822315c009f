package driven

import "context"

// EmbeddingService generates vector embeddings from text. It is the only
// component that talks to the embedding model.
//
// Failures are typed: domain.ErrEmbeddingUnavailable when the model is
// unreachable, domain.ErrEmbeddingDimensionMismatch when a returned vector
// does not match Dimensions. Retries are never swallowed here; callers
// decide recovery policy.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI-compatible inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result has
	// the same length and order as texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the vectors already
	// held by the VectorIndex.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
