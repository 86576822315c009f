package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallmind/recallmind/internal/adapters/driven/storage/memory"
	"github.com/recallmind/recallmind/internal/chunker"
	"github.com/recallmind/recallmind/internal/core/domain"
)

// fakeEmbedder returns fixed-size vectors and can be programmed to fail.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		e, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 3 }
func (f *fakeEmbedder) ModelName() string          { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEmbedder) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func writeNote(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestEngine(t *testing.T, root string) (*SyncEngine, *memory.VectorIndex, *fakeEmbedder) {
	t.Helper()
	idx := memory.NewVectorIndex()
	emb := &fakeEmbedder{}
	engine := NewSyncEngine(SyncEngineConfig{
		Root:     root,
		Chunker:  chunker.New(),
		Embedder: emb,
		Index:    idx,
	})
	return engine, idx, emb
}

func TestSyncEngine_Reconcile_AddsNewFiles(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "alpha.md", "# Alpha\n\nsome text about alpha")
	writeNote(t, root, "nested/beta.md", "beta content")
	writeNote(t, root, "ignored.txt", "not markdown")

	engine, idx, _ := newTestEngine(t, root)

	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Deleted)
	assert.NotEmpty(t, report.CycleID)

	sources, err := idx.ListSources(context.Background())
	require.NoError(t, err)
	keys := make(map[string]domain.Source, len(sources))
	for _, s := range sources {
		keys[s.Key] = s
	}
	require.Contains(t, keys, "alpha.md")
	require.Contains(t, keys, "nested/beta.md")
	assert.Equal(t, "Alpha", keys["alpha.md"].Title)
	assert.Equal(t, "beta", keys["nested/beta.md"].Title)
}

func TestSyncEngine_Reconcile_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "unchanging content")

	engine, _, emb := newTestEngine(t, root)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	callsAfterFirst := emb.callCount()

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Added)
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, callsAfterFirst, emb.callCount(), "unchanged files must not be re-embedded")
}

func TestSyncEngine_Reconcile_ReingestsModifiedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeNote(t, root, "note.md", "original")

	engine, idx, _ := newTestEngine(t, root)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx)
	require.NoError(t, err)

	// Change size and mtime so the fingerprint differs
	require.NoError(t, os.WriteFile(path, []byte("rewritten and longer"), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Content, "rewritten")
}

func TestSyncEngine_Reconcile_RemovesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeNote(t, root, "doomed.md", "going away")
	writeNote(t, root, "survivor.md", "staying")

	engine, idx, _ := newTestEngine(t, root)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)

	sources, err := idx.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "survivor.md", sources[0].Key)
}

func TestSyncEngine_Reconcile_SkipsEmptyFilesWithWarning(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "empty.md", "   \n\n  ")
	writeNote(t, root, "real.md", "actual content")

	engine, idx, _ := newTestEngine(t, root)

	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "empty.md")

	sources, _, err := idx.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sources)
}

func TestSyncEngine_Reconcile_AbortsOnEmbeddingOutage(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "content")

	engine, idx, emb := newTestEngine(t, root)
	emb.setErr(fmt.Errorf("daemon down: %w", domain.ErrEmbeddingUnavailable))

	_, err := engine.Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	// Nothing was half-indexed
	sources, _, countErr := idx.Counts(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, sources)

	// Recovery: next cycle succeeds
	emb.setErr(nil)
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
}

func TestSyncEngine_Reconcile_AbortsOnDimensionMismatch(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "content")

	engine, idx, emb := newTestEngine(t, root)
	emb.setErr(fmt.Errorf("model returned 384 dimensions: %w", domain.ErrEmbeddingDimensionMismatch))

	// A dimension mismatch means the configured model disagrees with the
	// index; retrying other sources would fail the same way.
	_, err := engine.Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingDimensionMismatch)

	sources, _, countErr := idx.Counts(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, sources)
}

func TestSyncEngine_Reconcile_PerSourceFailureIsIsolated(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "bad.md", "will fail to embed")
	writeNote(t, root, "good.md", "fine")

	engine, idx, emb := newTestEngine(t, root)
	// A non-outage error warns and moves on
	emb.setErr(errors.New("transient model hiccup"))

	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Added)
	assert.Len(t, report.Warnings, 2)

	emb.setErr(nil)
	report, err = engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)

	sources, _, countErr := idx.Counts(context.Background())
	require.NoError(t, countErr)
	assert.Equal(t, 2, sources)
}

func TestSyncEngine_Reconcile_ConcurrentCallRejected(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "slow.md", "content")

	engine, _, emb := newTestEngine(t, root)
	emb.delay = 200 * time.Millisecond

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := engine.Reconcile(context.Background())
		done <- err
	}()

	<-started
	time.Sleep(50 * time.Millisecond) // let the first cycle take the lock

	_, err := engine.Reconcile(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	require.NoError(t, <-done)
}

func TestSyncEngine_TriggerResync_Coalesces(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "content")

	engine, _, _ := newTestEngine(t, root)

	// Many triggers before Run drains them collapse into one
	for i := 0; i < 10; i++ {
		engine.TriggerResync()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := engine.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	status, statusErr := engine.Status(context.Background())
	require.NoError(t, statusErr)
	assert.Equal(t, 1, status.SourceCount)
	assert.False(t, status.LastSyncTime.IsZero())
}

func TestSyncEngine_Status_ReportsCountsAndWarnings(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "empty.md", "")
	writeNote(t, root, "note.md", "content")

	engine, _, _ := newTestEngine(t, root)

	_, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	status, err := engine.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.SourceCount)
	assert.Positive(t, status.ChunkCount)
	require.Len(t, status.LastSyncErrors, 1)
	assert.Contains(t, status.LastSyncErrors[0], "empty.md")
}

func TestTitleOf(t *testing.T) {
	tests := []struct {
		name string
		key  string
		text string
		want string
	}{
		{"first heading", "a.md", "# My Title\n\nbody", "My Title"},
		{"heading after body", "a.md", "intro\n\n# Later Title\n", "Later Title"},
		{"no heading falls back to stem", "notes/plan.md", "just text", "plan"},
		{"empty heading ignored", "a.md", "# \n\ntext", "a"},
		{"subheading is not a title", "a.md", "## Section\ntext", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titleOf(tt.key, tt.text))
		})
	}
}
