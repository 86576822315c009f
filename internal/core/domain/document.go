package domain

import "time"

// Source represents one note file tracked under the content root.
// It is the granularity at which the index is updated: re-ingesting or
// deleting a source replaces or removes all of its chunks together.
type Source struct {
	// Key is the stable identifier, the slash-separated path relative
	// to the content root.
	Key string

	// Path is the absolute filesystem path.
	Path string

	// Title is the human-readable title, taken from the first markdown
	// heading when present, otherwise the filename stem.
	Title string

	// Fingerprint captures the file state at indexing time (size plus
	// modification time). A changed fingerprint marks the source as
	// modified on the next reconciliation.
	Fingerprint string

	// IndexedAt is when the source was last (re-)ingested.
	IndexedAt time.Time
}

// Chunk represents a contiguous text span from one source, the unit of
// embedding and retrieval. Chunks are immutable: updates happen by
// replacing all chunks of a source.
type Chunk struct {
	// ID is deterministic: "<source key>:<position>".
	ID string

	// SourceKey links to the owning Source.
	SourceKey string

	// Position is the ordinal position within the source.
	Position int

	// Content is the text of this chunk, including the overlap prefix
	// carried over from the previous chunk.
	Content string

	// StartOffset and EndOffset are byte offsets of Content within the
	// source text. Consecutive chunks overlap: ignoring each chunk's
	// overlap prefix, the offset ranges tile the document exactly.
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation used for similarity search.
	Embedding []float32
}

// SearchResult represents a retrieved chunk with its relevance score.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// SourcePath is the absolute path of the owning source, used for
	// citations.
	SourcePath string

	// Similarity is the cosine similarity score (-1 to 1, higher is
	// more relevant).
	Similarity float64
}
