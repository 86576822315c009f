package driven

import "context"

// LLMService provides text generation for retrieval-augmented answers.
//
// Calls are bounded: implementations apply a hard timeout and return
// domain.ErrGenerationUnavailable (wrapped) when the model fails or times
// out. Cancellation of ctx stops the underlying call where the backend
// supports it.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI-compatible inference servers
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
