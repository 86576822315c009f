package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question to answer from the indexed notes"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations,omitempty"`
	Grounded  bool     `json:"grounded"`
}

// ResyncOutput is the output schema for the resync tool.
type ResyncOutput struct {
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Deleted   int      `json:"deleted"`
	Unchanged int      `json:"unchanged"`
	Warnings  []string `json:"warnings,omitempty"`
	Duration  string   `json:"duration"`
}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	SourceCount    int      `json:"source_count"`
	ChunkCount     int      `json:"chunk_count"`
	LastSyncTime   string   `json:"last_sync_time,omitempty"`
	LastSyncErrors []string `json:"last_sync_errors,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed markdown notes, with source citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resync",
		Description: "Reconcile the index with the notes folder and report what changed",
	}, s.handleResync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Report index health: source and chunk counts, last sync time and errors",
	}, s.handleStatus)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Assistant.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Grounded:  answer.Grounded,
	}, nil
}

// handleResync handles the resync tool invocation. It runs synchronously
// so the caller sees the cycle report.
func (s *Server) handleResync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ResyncOutput, error) {
	report, err := s.ports.Sync.Reconcile(ctx)
	if err != nil {
		return nil, ResyncOutput{}, err
	}

	return nil, ResyncOutput{
		Added:     report.Added,
		Updated:   report.Updated,
		Deleted:   report.Deleted,
		Unchanged: report.Unchanged,
		Warnings:  report.Warnings,
		Duration:  report.Duration.Round(time.Millisecond).String(),
	}, nil
}

// handleStatus handles the status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	out := StatusOutput{
		SourceCount:    status.SourceCount,
		ChunkCount:     status.ChunkCount,
		LastSyncErrors: status.LastSyncErrors,
	}
	if !status.LastSyncTime.IsZero() {
		out.LastSyncTime = status.LastSyncTime.Format(time.RFC3339)
	}
	return nil, out, nil
}
