package domain

import "time"

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	// Text is the generated answer, or the insufficient-context
	// sentinel when retrieval produced nothing usable.
	Text string

	// Citations are the distinct source paths of the chunks included
	// in the prompt, in retrieval order. Empty for ungrounded answers.
	Citations []string

	// Grounded reports whether the generation model was consulted with
	// retrieved context. False means the sentinel was returned without
	// a model call.
	Grounded bool
}

// IndexStatus is the observability snapshot exposed to outer layers.
type IndexStatus struct {
	// SourceCount is the number of sources currently indexed.
	SourceCount int

	// ChunkCount is the number of chunks currently indexed.
	ChunkCount int

	// LastSyncTime is when the last reconciliation cycle finished.
	// Zero if no cycle has completed yet.
	LastSyncTime time.Time

	// LastSyncErrors holds the errors and per-source warnings recorded
	// by the last cycle. Empty after a clean cycle.
	LastSyncErrors []string
}

// SyncReport summarises one completed reconciliation cycle.
type SyncReport struct {
	// CycleID identifies the cycle in logs.
	CycleID string

	// Added, Updated, Deleted and Unchanged count sources by how the
	// diff classified them.
	Added     int
	Updated   int
	Deleted   int
	Unchanged int

	// Warnings holds per-source problems that did not abort the cycle
	// (unreadable files, failed embeddings). The affected sources keep
	// their previous index entries.
	Warnings []string

	// Duration is the wall-clock time of the cycle.
	Duration time.Duration
}
