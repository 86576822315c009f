package driving

import (
	"context"

	"github.com/recallmind/recallmind/internal/core/domain"
)

// SyncService keeps the vector index consistent with the content root.
type SyncService interface {
	// TriggerResync requests a reconciliation cycle. Idempotent: triggers
	// arriving while a cycle runs are coalesced into one follow-up cycle.
	TriggerResync()

	// Reconcile runs one cycle synchronously and returns its report.
	// Returns domain.ErrSyncInProgress if a cycle is already running.
	Reconcile(ctx context.Context) (*domain.SyncReport, error)

	// Run consumes trigger requests until ctx is cancelled, executing at
	// most one reconciliation cycle at a time.
	Run(ctx context.Context) error

	// Status returns the current index observability snapshot.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
