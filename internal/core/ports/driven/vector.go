package driven

import (
	"context"

	"github.com/recallmind/recallmind/internal/core/domain"
)

// VectorIndex persists chunks with their embeddings and serves similarity
// search. The sync engine is the sole writer; the answerer only reads.
//
// Writes are atomic per source: a concurrent Search never observes a
// partially replaced source, only the complete old set or the complete new
// set. Searches against unrelated sources proceed while a write is in
// flight.
//
// Storage failures are reported as domain.ErrIndexUnavailable (wrapped).
type VectorIndex interface {
	// ReplaceSource atomically replaces all entries for source.Key with
	// the given chunks, inserting the source if it is new.
	ReplaceSource(ctx context.Context, source domain.Source, chunks []domain.Chunk) error

	// DeleteSource removes a source and all of its chunks.
	// No-op if the source is absent.
	DeleteSource(ctx context.Context, sourceKey string) error

	// Search returns the k entries most similar to the query vector,
	// ordered by descending cosine similarity, ties broken by insertion
	// order. Returns fewer than k if the index holds fewer entries.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// ListSources returns every source currently indexed, including its
	// recorded fingerprint, for reconciliation diffing.
	ListSources(ctx context.Context) ([]domain.Source, error)

	// Counts returns the number of indexed sources and chunks.
	Counts(ctx context.Context) (sources, chunks int, err error)

	// Close releases resources.
	Close() error
}
