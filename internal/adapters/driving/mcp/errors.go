// Package mcp provides an MCP (Model Context Protocol) server adapter for
// RecallMind. It lets AI assistants query the indexed notes, trigger
// resyncs and inspect index health.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
