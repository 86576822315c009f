package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallmind/recallmind/internal/adapters/driven/storage/memory"
	"github.com/recallmind/recallmind/internal/core/domain"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
)

// fakeLLM records generation calls and returns a canned response.
type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string          { return "fake" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func seedIndex(t *testing.T, idx *memory.VectorIndex, key, path string, vecs ...[]float32) {
	t.Helper()
	chunks := make([]domain.Chunk, len(vecs))
	for i, v := range vecs {
		chunks[i] = domain.Chunk{
			ID:          fmt.Sprintf("%s:%d", key, i),
			SourceKey:   key,
			Position:    i,
			Content:     fmt.Sprintf("content %s %d", key, i),
			StartOffset: i * 100,
			EndOffset:   i*100 + 100,
			Embedding:   v,
		}
	}
	require.NoError(t, idx.ReplaceSource(context.Background(), domain.Source{Key: key, Path: path}, chunks))
}

func newTestAssistant(t *testing.T, idx *memory.VectorIndex, llm *fakeLLM, opts ...func(*AssistantConfig)) *Assistant {
	t.Helper()
	cfg := AssistantConfig{
		Embedder: &fakeEmbedder{},
		Index:    idx,
		LLM:      llm,
		TopK:     3,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewAssistant(cfg)
}

func TestAssistant_Answer_EmptyIndexReturnsSentinel(t *testing.T) {
	llm := &fakeLLM{reply: "should not be used"}
	assistant := newTestAssistant(t, memory.NewVectorIndex(), llm)

	answer, err := assistant.Answer(context.Background(), "what is photosynthesis?")
	require.NoError(t, err)
	assert.Equal(t, SentinelAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.False(t, answer.Grounded)
	assert.Zero(t, llm.callCount(), "sentinel answers must not consult the model")
}

func TestAssistant_Answer_GeneratesGroundedAnswer(t *testing.T) {
	idx := memory.NewVectorIndex()
	seedIndex(t, idx, "bio.md", "/notes/bio.md", []float32{1, 1, 0})

	llm := &fakeLLM{reply: "  plants convert light to energy  "}
	assistant := newTestAssistant(t, idx, llm)

	answer, err := assistant.Answer(context.Background(), "what is photosynthesis?")
	require.NoError(t, err)
	assert.Equal(t, "plants convert light to energy", answer.Text)
	assert.Equal(t, []string{"/notes/bio.md"}, answer.Citations)
	assert.True(t, answer.Grounded)
	assert.Equal(t, 1, llm.callCount())

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "[Source: /notes/bio.md]")
	assert.Contains(t, prompt, "content bio.md 0")
	assert.Contains(t, prompt, "Question: what is photosynthesis?")
}

func TestAssistant_Answer_CitationsAreDistinctInRetrievalOrder(t *testing.T) {
	idx := memory.NewVectorIndex()
	// Two chunks from one source, one from another; all retrieved.
	seedIndex(t, idx, "a.md", "/notes/a.md", []float32{1, 1, 0}, []float32{1, 0.9, 0})
	seedIndex(t, idx, "b.md", "/notes/b.md", []float32{0.9, 1, 0})

	llm := &fakeLLM{reply: "answer"}
	assistant := newTestAssistant(t, idx, llm)

	answer, err := assistant.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Len(t, answer.Citations, 2)
	assert.ElementsMatch(t, []string{"/notes/a.md", "/notes/b.md"}, answer.Citations)
}

func TestAssistant_Answer_TiesOrderedBySourcePathThenOffset(t *testing.T) {
	idx := memory.NewVectorIndex()
	// Identical vectors: similarity ties everywhere. Insert z before a
	// so insertion order and path order disagree.
	seedIndex(t, idx, "z.md", "/notes/z.md", []float32{1, 0, 0})
	seedIndex(t, idx, "a.md", "/notes/a.md", []float32{1, 0, 0})

	llm := &fakeLLM{reply: "answer"}
	assistant := newTestAssistant(t, idx, llm)

	answer, err := assistant.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/a.md", "/notes/z.md"}, answer.Citations)
}

func TestAssistant_Answer_MinSimilarityFloorFiltersWeakMatches(t *testing.T) {
	idx := memory.NewVectorIndex()
	// Orthogonal to the query vector: similarity 0
	seedIndex(t, idx, "far.md", "/notes/far.md", []float32{0, 0, 1})

	llm := &fakeLLM{reply: "should not be used"}
	assistant := newTestAssistant(t, idx, llm, func(cfg *AssistantConfig) {
		cfg.MinSimilarity = 0.3
	})

	answer, err := assistant.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, SentinelAnswer, answer.Text)
	assert.Zero(t, llm.callCount())
}

func TestAssistant_Answer_GenerationFailurePropagates(t *testing.T) {
	idx := memory.NewVectorIndex()
	seedIndex(t, idx, "a.md", "/notes/a.md", []float32{1, 1, 0})

	llm := &fakeLLM{err: fmt.Errorf("daemon gone: %w", domain.ErrGenerationUnavailable)}
	assistant := newTestAssistant(t, idx, llm)

	_, err := assistant.Answer(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAssistant_Answer_EmptyQuestionIsInvalid(t *testing.T) {
	assistant := newTestAssistant(t, memory.NewVectorIndex(), &fakeLLM{})

	_, err := assistant.Answer(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
