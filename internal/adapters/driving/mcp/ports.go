package mcp

import (
	"github.com/recallmind/recallmind/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers questions from the indexed notes.
	Assistant driving.AssistantService

	// Sync reconciles the index and reports its status.
	Sync driving.SyncService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
