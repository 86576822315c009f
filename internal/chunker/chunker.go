// Package chunker splits document text into overlapping chunks sized for
// embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/recallmind/recallmind/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes carried
// from the end of one chunk to the start of the next.
const DefaultChunkOverlap = 200

// Chunker splits document text into overlapping chunks. Splitting prefers
// paragraph breaks, then line breaks, then word breaks, and falls back to a
// hard cut when a single run of text exceeds the chunk size. The overlap
// duplicates the trailing bytes of each chunk at the start of the next,
// trading index size for retrieval recall at chunk edges.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits text into ordered chunks for the given source key. The
// result is deterministic for identical inputs: chunk IDs are
// "<sourceKey>:<position>" and offsets index into text.
//
// An empty document yields no chunks. A document no larger than the chunk
// size yields exactly one chunk spanning it.
func (c *Chunker) Chunk(sourceKey, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	n := len(text)
	chunks := make([]domain.Chunk, 0, n/(c.chunkSize-c.overlap)+1)

	// pos is the coverage cursor: the first byte not yet covered by a
	// previous chunk's non-overlap region.
	pos := 0
	for position := 0; pos < n; position++ {
		start := pos - c.overlap
		if start < 0 {
			start = 0
		}

		end := n
		if limit := start + c.chunkSize; limit < n {
			end = cutPoint(text, pos, limit)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          fmt.Sprintf("%s:%d", sourceKey, position),
			SourceKey:   sourceKey,
			Position:    position,
			Content:     text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})
		pos = end
	}

	return chunks
}

// cutPoint picks a split position in (pos, limit], preferring a paragraph
// break, then a line break, then a word break, then a hard cut aligned to
// a rune boundary.
func cutPoint(text string, pos, limit int) int {
	window := text[pos:limit]

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return pos + i + 2
	}
	if i := strings.LastIndexByte(window, '\n'); i > 0 {
		return pos + i + 1
	}
	if i := strings.LastIndexByte(window, ' '); i > 0 {
		return pos + i + 1
	}

	// Hard cut: back up so multi-byte runes are never split.
	for limit > pos+1 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}
