package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for RecallMind resources.
const uriScheme = "recallmind://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Index health: source and chunk counts, last sync time and errors",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleStatusResource returns the index status snapshot.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	type statusInfo struct {
		SourceCount    int      `json:"source_count"`
		ChunkCount     int      `json:"chunk_count"`
		LastSyncTime   string   `json:"last_sync_time,omitempty"`
		LastSyncErrors []string `json:"last_sync_errors,omitempty"`
	}

	info := statusInfo{
		SourceCount:    status.SourceCount,
		ChunkCount:     status.ChunkCount,
		LastSyncErrors: status.LastSyncErrors,
	}
	if !status.LastSyncTime.IsZero() {
		info.LastSyncTime = status.LastSyncTime.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
