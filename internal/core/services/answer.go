package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/recallmind/recallmind/internal/core/domain"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
	"github.com/recallmind/recallmind/internal/core/ports/driving"
	"github.com/recallmind/recallmind/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.AssistantService = (*Assistant)(nil)

// Retrieval defaults.
const (
	DefaultTopK          = 5
	DefaultMinSimilarity = 0.0
	DefaultMaxTokens     = 1024
)

// SentinelAnswer is returned when retrieval produced no usable context.
const SentinelAnswer = "I don't have enough information to answer that question. Please make sure you have some study material loaded."

// AssistantConfig holds the dependencies and retrieval settings.
type AssistantConfig struct {
	// Embedder turns the question into a query vector. Required.
	Embedder driven.EmbeddingService

	// Index is the vector index to retrieve from. Required.
	Index driven.VectorIndex

	// LLM generates the grounded answer. Required.
	LLM driven.LLMService

	// TopK is the retrieval width (default: 5).
	TopK int

	// MinSimilarity drops retrieved chunks scoring below this floor
	// (default: 0, no floor).
	MinSimilarity float64

	// MaxTokens caps the generated answer length (default: 1024).
	MaxTokens int
}

// Assistant answers questions using retrieval-augmented generation: embed
// the question, retrieve the closest chunks, and generate from a prompt
// that restricts the model to that context.
type Assistant struct {
	embedder      driven.EmbeddingService
	index         driven.VectorIndex
	llm           driven.LLMService
	topK          int
	minSimilarity float64
	maxTokens     int
}

// NewAssistant creates an assistant with the given configuration.
func NewAssistant(cfg AssistantConfig) *Assistant {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Assistant{
		embedder:      cfg.Embedder,
		index:         cfg.Index,
		llm:           cfg.LLM,
		topK:          cfg.TopK,
		minSimilarity: cfg.MinSimilarity,
		maxTokens:     cfg.MaxTokens,
	}
}

// Answer produces a grounded answer with citations.
func (a *Assistant) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	queryVec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := a.index.Search(ctx, queryVec, a.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	results = a.filter(results)

	if len(results) == 0 {
		// Nothing to ground on. Answer deterministically without
		// consulting the model.
		logger.Debug("no usable context retrieved, returning sentinel")
		return &domain.Answer{
			Text:     SentinelAnswer,
			Grounded: false,
		}, nil
	}

	prompt := buildPrompt(question, results)
	logger.Debug("generating from %d chunks (%d prompt bytes)", len(results), len(prompt))

	text, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: citations(results),
		Grounded:  true,
	}, nil
}

// filter applies the similarity floor and orders results by relevance,
// ties broken by source path then start offset so equal scores are stable
// across backends.
func (a *Assistant) filter(results []domain.SearchResult) []domain.SearchResult {
	kept := results[:0]
	for _, r := range results {
		if r.Similarity >= a.minSimilarity {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		if kept[i].SourcePath != kept[j].SourcePath {
			return kept[i].SourcePath < kept[j].SourcePath
		}
		return kept[i].Chunk.StartOffset < kept[j].Chunk.StartOffset
	})
	return kept
}

// buildPrompt assembles the grounded prompt: preamble, labelled context
// blocks, then the question.
func buildPrompt(question string, results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Use the following pieces of context to answer the question at the end. ")
	b.WriteString("If you don't know the answer based on the context, just say that you don't know; do not make up an answer.\n\n")

	for _, r := range results {
		fmt.Fprintf(&b, "[Source: %s]\n%s\n\n", r.SourcePath, r.Chunk.Content)
	}

	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}

// citations returns the distinct source paths in retrieval order.
func citations(results []domain.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var paths []string
	for _, r := range results {
		if !seen[r.SourcePath] {
			seen[r.SourcePath] = true
			paths = append(paths, r.SourcePath)
		}
	}
	return paths
}
