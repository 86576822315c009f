package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recallmind/recallmind/internal/chunker"
	"github.com/recallmind/recallmind/internal/core/domain"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
	"github.com/recallmind/recallmind/internal/core/ports/driving"
	"github.com/recallmind/recallmind/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncService = (*SyncEngine)(nil)

// DefaultExtensions are the file extensions ingested when none are configured.
var DefaultExtensions = []string{".md"}

// SyncEngineConfig holds the dependencies and settings for the sync engine.
type SyncEngineConfig struct {
	// Root is the content root directory to reconcile against.
	Root string

	// Extensions are the file extensions to ingest (default: .md).
	Extensions []string

	// Chunker splits note text into chunks. Required.
	Chunker *chunker.Chunker

	// Embedder produces vectors for chunk text. Required.
	Embedder driven.EmbeddingService

	// Index is the vector index being kept consistent. Required.
	Index driven.VectorIndex
}

// SyncEngine reconciles the vector index with the content root. A cycle
// scans the directory, diffs against the indexed sources by fingerprint,
// and applies the changes one source at a time. At most one cycle runs at
// once; triggers arriving mid-cycle coalesce into a single follow-up.
type SyncEngine struct {
	root       string
	extensions map[string]bool
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	index      driven.VectorIndex

	trigger chan struct{}

	mu sync.Mutex // held for the duration of a cycle

	statusMu   sync.Mutex
	lastSync   time.Time
	lastErrors []string
}

// NewSyncEngine creates a sync engine for the given content root.
func NewSyncEngine(cfg SyncEngineConfig) *SyncEngine {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extSet[strings.ToLower(ext)] = true
	}

	return &SyncEngine{
		root:       cfg.Root,
		extensions: extSet,
		chunker:    cfg.Chunker,
		embedder:   cfg.Embedder,
		index:      cfg.Index,
		trigger:    make(chan struct{}, 1),
	}
}

// TriggerResync requests a reconciliation cycle without blocking. The
// trigger channel holds one pending request, so any number of triggers
// during a running cycle collapse into one follow-up cycle.
func (e *SyncEngine) TriggerResync() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run consumes trigger requests until ctx is cancelled.
func (e *SyncEngine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.trigger:
			if _, err := e.reconcile(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// Outages are transient: log and wait for the next trigger.
				logger.Warn("sync cycle failed: %v", err)
			}
		}
	}
}

// Reconcile runs one cycle synchronously. Returns domain.ErrSyncInProgress
// when a cycle is already running instead of queueing behind it.
func (e *SyncEngine) Reconcile(ctx context.Context) (*domain.SyncReport, error) {
	if !e.mu.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer e.mu.Unlock()
	return e.cycle(ctx)
}

// reconcile is the Run-loop variant: it waits for a running cycle rather
// than failing, so a queued trigger is never dropped.
func (e *SyncEngine) reconcile(ctx context.Context) (*domain.SyncReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle(ctx)
}

// scanned describes one file found under the content root.
type scanned struct {
	key         string
	path        string
	fingerprint string
}

func (e *SyncEngine) cycle(ctx context.Context) (*domain.SyncReport, error) {
	start := time.Now()
	report := &domain.SyncReport{
		CycleID: uuid.NewString(),
	}
	logger.Debug("sync cycle %s: scanning %s", report.CycleID, e.root)

	current, err := e.scan()
	if err != nil {
		e.recordStatus(time.Time{}, []string{err.Error()})
		return nil, err
	}

	indexed, err := e.index.ListSources(ctx)
	if err != nil {
		e.recordStatus(time.Time{}, []string{err.Error()})
		return nil, fmt.Errorf("listing indexed sources: %w", err)
	}
	indexedByKey := make(map[string]domain.Source, len(indexed))
	for _, src := range indexed {
		indexedByKey[src.Key] = src
	}

	// Apply in deterministic key order so logs and reports are stable.
	keys := make([]string, 0, len(current))
	for key := range current {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := current[key]
		prev, exists := indexedByKey[key]
		if exists && prev.Fingerprint == file.fingerprint {
			report.Unchanged++
			continue
		}

		if err := e.ingest(ctx, file); err != nil {
			// Backend outages and misconfiguration abort the cycle:
			// every remaining source would fail the same way. Per-file
			// problems are warnings, and the stale index entry (if any)
			// survives.
			if errors.Is(err, domain.ErrEmbeddingUnavailable) ||
				errors.Is(err, domain.ErrEmbeddingDimensionMismatch) ||
				errors.Is(err, domain.ErrIndexUnavailable) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				e.recordStatus(time.Time{}, []string{err.Error()})
				return nil, fmt.Errorf("ingesting %s: %w", key, err)
			}
			logger.Warn("skipping %s: %v", key, err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", key, err))
			continue
		}

		if exists {
			report.Updated++
		} else {
			report.Added++
		}
	}

	// Deleted sources: indexed but no longer on disk.
	deletedKeys := make([]string, 0)
	for key := range indexedByKey {
		if _, ok := current[key]; !ok {
			deletedKeys = append(deletedKeys, key)
		}
	}
	sort.Strings(deletedKeys)
	for _, key := range deletedKeys {
		if err := e.index.DeleteSource(ctx, key); err != nil {
			e.recordStatus(time.Time{}, []string{err.Error()})
			return nil, fmt.Errorf("deleting %s: %w", key, err)
		}
		report.Deleted++
	}

	report.Duration = time.Since(start)
	e.recordStatus(time.Now().UTC(), report.Warnings)
	logger.Info("sync cycle %s: +%d ~%d -%d =%d in %s",
		report.CycleID, report.Added, report.Updated, report.Deleted,
		report.Unchanged, report.Duration.Round(time.Millisecond))
	return report, nil
}

// scan walks the content root and fingerprints every ingestable file.
// Unreadable subtrees fail the scan: a partial view would look like mass
// deletion to the diff.
func (e *SyncEngine) scan() (map[string]scanned, error) {
	current := make(map[string]scanned)
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git or .obsidian.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && path != e.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		current[key] = scanned{
			key:         key,
			path:        path,
			fingerprint: fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning content root: %w", err)
	}
	return current, nil
}

// ingest reads, chunks, embeds and stores one file.
func (e *SyncEngine) ingest(ctx context.Context, file scanned) error {
	data, err := os.ReadFile(file.path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("file is empty")
	}

	chunks := e.chunker.Chunk(file.key, text)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	source := domain.Source{
		Key:         file.key,
		Path:        file.path,
		Title:       titleOf(file.key, text),
		Fingerprint: file.fingerprint,
		IndexedAt:   time.Now().UTC(),
	}
	if err := e.index.ReplaceSource(ctx, source, chunks); err != nil {
		return err
	}
	logger.Debug("ingested %s (%d chunks)", file.key, len(chunks))
	return nil
}

// titleOf extracts a display title: the first markdown heading if one
// exists, otherwise the filename stem.
func titleOf(key, text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(trimmed, "# "); ok {
			if title := strings.TrimSpace(after); title != "" {
				return title
			}
		}
	}
	base := filepath.Base(key)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Status returns the current index snapshot.
func (e *SyncEngine) Status(ctx context.Context) (*domain.IndexStatus, error) {
	sources, chunks, err := e.index.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting index: %w", err)
	}

	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return &domain.IndexStatus{
		SourceCount:    sources,
		ChunkCount:     chunks,
		LastSyncTime:   e.lastSync,
		LastSyncErrors: append([]string(nil), e.lastErrors...),
	}, nil
}

func (e *SyncEngine) recordStatus(finished time.Time, errs []string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	if !finished.IsZero() {
		e.lastSync = finished
	}
	e.lastErrors = append([]string(nil), errs...)
}
