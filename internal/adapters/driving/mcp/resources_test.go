package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallmind/recallmind/internal/core/domain"
)

func TestServer_handleStatusResource(t *testing.T) {
	sync := &mockSyncService{
		status: &domain.IndexStatus{
			SourceCount:    3,
			ChunkCount:     42,
			LastSyncTime:   fixedTime,
			LastSyncErrors: []string{"empty.md: file is empty"},
		},
	}
	server := newServerWith(t, nil, sync)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uriScheme + "status"},
	}
	result, err := server.handleStatusResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &parsed))
	assert.EqualValues(t, 3, parsed["source_count"])
	assert.EqualValues(t, 42, parsed["chunk_count"])
	assert.Equal(t, "2025-06-01T12:00:00Z", parsed["last_sync_time"])
}

func TestServer_handleStatusResource_ZeroSyncTimeOmitted(t *testing.T) {
	sync := &mockSyncService{status: &domain.IndexStatus{}}
	server := newServerWith(t, nil, sync)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uriScheme + "status"},
	}
	result, err := server.handleStatusResource(context.Background(), req)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &parsed))
	_, present := parsed["last_sync_time"]
	assert.False(t, present)
}
