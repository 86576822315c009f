package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding model could not be
	// reached. A reconciliation cycle aborts on this error because every
	// remaining source would fail the same way.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingDimensionMismatch indicates the embedding model returned
	// a vector whose length differs from the configured dimension. This
	// guards the index against mixed-dimension corruption.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexUnavailable indicates the vector index storage failed.
	// Fatal for the current operation, not for the process.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationUnavailable indicates the generation model failed or
	// timed out. Surfaced to the caller of Answer, never masked by a
	// fabricated response.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrSyncInProgress indicates a reconciliation cycle is already
	// running. Informational: triggers arriving during a cycle are
	// coalesced into a single follow-up cycle.
	ErrSyncInProgress = errors.New("sync in progress")
)
