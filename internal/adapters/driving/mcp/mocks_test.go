package mcp

import (
	"context"
	"time"

	"github.com/recallmind/recallmind/internal/core/domain"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistantService) Answer(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	report   *domain.SyncReport
	status   *domain.IndexStatus
	err      error
	triggers int
}

func (m *mockSyncService) TriggerResync() {
	m.triggers++
}

func (m *mockSyncService) Reconcile(_ context.Context) (*domain.SyncReport, error) {
	return m.report, m.err
}

func (m *mockSyncService) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockSyncService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

// fixedTime is a stable timestamp for status assertions.
var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
