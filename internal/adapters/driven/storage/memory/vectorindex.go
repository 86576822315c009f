// Package memory provides an in-memory vector index for testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/recallmind/recallmind/internal/adapters/driven/storage/vectormath"
	"github.com/recallmind/recallmind/internal/core/domain"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type sourceEntry struct {
	source domain.Source
	chunks []domain.Chunk
	seq    []int // insertion sequence per chunk, mirrors SQLite rowid ordering
}

// VectorIndex is an in-memory implementation of the vector index port.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]*sourceEntry
	nextSeq int
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		entries: make(map[string]*sourceEntry),
	}
}

// ReplaceSource swaps a source's chunk set atomically under the write lock.
func (v *VectorIndex) ReplaceSource(_ context.Context, source domain.Source, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entry := &sourceEntry{
		source: source,
		chunks: make([]domain.Chunk, len(chunks)),
		seq:    make([]int, len(chunks)),
	}
	copy(entry.chunks, chunks)
	for i := range entry.seq {
		entry.seq[i] = v.nextSeq
		v.nextSeq++
	}
	v.entries[source.Key] = entry
	return nil
}

// DeleteSource removes a source and its chunks. No-op if absent.
func (v *VectorIndex) DeleteSource(_ context.Context, sourceKey string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, sourceKey)
	return nil
}

// Search returns the k most similar chunks, ties broken by insertion order.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	type scored struct {
		result domain.SearchResult
		seq    int
	}
	var all []scored
	for _, entry := range v.entries {
		for i, chunk := range entry.chunks {
			all = append(all, scored{
				result: domain.SearchResult{
					Chunk:      chunk,
					SourcePath: entry.source.Path,
					Similarity: vectormath.Cosine(query, chunk.Embedding),
				},
				seq: entry.seq[i],
			})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].result.Similarity != all[j].result.Similarity {
			return all[i].result.Similarity > all[j].result.Similarity
		}
		return all[i].seq < all[j].seq
	})

	if len(all) > k {
		all = all[:k]
	}
	results := make([]domain.SearchResult, len(all))
	for i, s := range all {
		results[i] = s.result
	}
	return results, nil
}

// ListSources returns all indexed sources.
func (v *VectorIndex) ListSources(_ context.Context) ([]domain.Source, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	sources := make([]domain.Source, 0, len(v.entries))
	for _, entry := range v.entries {
		sources = append(sources, entry.source)
	}
	return sources, nil
}

// Counts returns the number of sources and chunks held.
func (v *VectorIndex) Counts(_ context.Context) (int, int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	chunks := 0
	for _, entry := range v.entries {
		chunks += len(entry.chunks)
	}
	return len(v.entries), chunks, nil
}

// Close is a no-op for the in-memory index.
func (v *VectorIndex) Close() error {
	return nil
}
