// Package sqlite provides the persistent vector index backed by SQLite.
//
// Embeddings are stored as little-endian float32 blobs alongside chunk
// text and source metadata. Similarity search is brute-force cosine over
// all stored chunks, which is adequate for a personal notes folder.
// Per-source writes run in a single transaction, so readers observe either
// the complete old chunk set or the complete new one, never a mix; WAL
// mode lets searches proceed while a write is in flight.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/recallmind/recallmind/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/recallmind/recallmind/internal/adapters/driven/storage/vectormath"
	"github.com/recallmind/recallmind/internal/core/domain"
	"github.com/recallmind/recallmind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is the SQLite-backed vector index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a vector index at the specified data directory.
// If dataDir is empty, defaults to ~/.recallmind/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recallmind", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode so searches keep running during writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ReplaceSource atomically replaces all entries for source.Key with the
// given chunks. The delete and inserts commit as one transaction, so a
// concurrent Search sees either the prior chunk set or the new one.
func (s *Store) ReplaceSource(ctx context.Context, source domain.Source, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if source.IndexedAt.IsZero() {
		source.IndexedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (key, path, title, fingerprint, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			fingerprint = excluded.fingerprint,
			indexed_at = excluded.indexed_at
	`, source.Key, source.Path, source.Title, source.Fingerprint, source.IndexedAt)
	if err != nil {
		return fmt.Errorf("%w: saving source: %w", domain.ErrIndexUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_key = ?", source.Key); err != nil {
		return fmt.Errorf("%w: clearing chunks: %w", domain.ErrIndexUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_key, position, content, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrIndexUnavailable, err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.SourceKey, chunk.Position,
			chunk.Content, chunk.StartOffset, chunk.EndOffset, embeddingBlob); err != nil {
			return fmt.Errorf("%w: saving chunk %s: %w", domain.ErrIndexUnavailable, chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// DeleteSource removes a source and all of its chunks. No-op if absent.
func (s *Store) DeleteSource(ctx context.Context, sourceKey string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Delete chunks explicitly: connection pooling makes PRAGMA-based
	// cascade enforcement unreliable across pooled connections.
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_key = ?", sourceKey); err != nil {
		return fmt.Errorf("%w: deleting chunks: %w", domain.ErrIndexUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE key = ?", sourceKey); err != nil {
		return fmt.Errorf("%w: deleting source: %w", domain.ErrIndexUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Search returns the k chunks most similar to query by cosine similarity,
// ties broken by insertion order (rowid). Returns fewer than k when the
// index holds fewer chunks.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.source_key, c.position, c.content, c.start_offset, c.end_offset,
		       c.embedding, src.path
		FROM chunks c
		JOIN sources src ON src.key = c.source_key
		ORDER BY c.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close() //nolint:errcheck

	var results []domain.SearchResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var sourcePath string
		if err := rows.Scan(&chunk.ID, &chunk.SourceKey, &chunk.Position, &chunk.Content,
			&chunk.StartOffset, &chunk.EndOffset, &embeddingBlob, &sourcePath); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrIndexUnavailable, err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

		results = append(results, domain.SearchResult{
			Chunk:      chunk,
			SourcePath: sourcePath,
			Similarity: vectormath.Cosine(query, chunk.Embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrIndexUnavailable, err)
	}

	// Stable sort keeps rowid (insertion) order for equal similarities.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// ListSources returns every indexed source with its recorded fingerprint.
func (s *Store) ListSources(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, path, title, fingerprint, indexed_at FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sources: %w", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close() //nolint:errcheck

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		var source domain.Source
		var indexedAt sql.NullTime
		if err := rows.Scan(&source.Key, &source.Path, &source.Title,
			&source.Fingerprint, &indexedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning source: %w", domain.ErrIndexUnavailable, err)
		}
		if indexedAt.Valid {
			source.IndexedAt = indexedAt.Time
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sources: %w", domain.ErrIndexUnavailable, err)
	}

	return sources, nil
}

// Counts returns the number of indexed sources and chunks.
func (s *Store) Counts(ctx context.Context) (int, int, error) {
	var sources, chunks int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&sources); err != nil {
		return 0, 0, fmt.Errorf("%w: counting sources: %w", domain.ErrIndexUnavailable, err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&chunks); err != nil {
		return 0, 0, fmt.Errorf("%w: counting chunks: %w", domain.ErrIndexUnavailable, err)
	}
	return sources, chunks, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
