package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quizrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quizrag/data/quizrag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quizrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "quizrag.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
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

// VectorIndex returns a VectorIndex interface backed by this store.
// Closing it does not close the store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// IngestionTracker returns an IngestionTracker interface backed by this store.
func (s *Store) IngestionTracker() driven.IngestionTracker {
	return &ingestionTracker{store: s}
}

// QuizStore returns a QuizStore interface backed by this store.
func (s *Store) QuizStore() driven.QuizStore {
	return &quizStore{store: s}
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

	// Sort and run migrations
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

		// Read and execute migration
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

// ==================== Ingestion Tracker ====================

// ingestionTracker implements driven.IngestionTracker.
type ingestionTracker struct {
	store *Store
}

var _ driven.IngestionTracker = (*ingestionTracker)(nil)

// HasIngested reports whether a marker exists.
func (t *ingestionTracker) HasIngested(ctx context.Context, scopeID, sourceID string) (bool, error) {
	var exists int
	err := t.store.db.QueryRowContext(ctx, `
		SELECT 1 FROM ingestion_markers WHERE scope_id = ? AND source_id = ?
	`, scopeID, sourceID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking marker: %w", err)
	}
	return true, nil
}

// MarkIngested records a marker, replacing any earlier one.
func (t *ingestionTracker) MarkIngested(ctx context.Context, scopeID, sourceID string) error {
	_, err := t.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_markers (scope_id, source_id, completed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope_id, source_id) DO UPDATE SET
			completed_at = excluded.completed_at
	`, scopeID, sourceID, t.store.now().UTC())
	if err != nil {
		return fmt.Errorf("saving marker: %w", err)
	}
	return nil
}

// Clear removes a marker.
func (t *ingestionTracker) Clear(ctx context.Context, scopeID, sourceID string) error {
	_, err := t.store.db.ExecContext(ctx,
		"DELETE FROM ingestion_markers WHERE scope_id = ? AND source_id = ?", scopeID, sourceID)
	if err != nil {
		return fmt.Errorf("deleting marker: %w", err)
	}
	return nil
}

// List returns the markers for a scope, ordered by source ID.
func (t *ingestionTracker) List(ctx context.Context, scopeID string) ([]domain.IngestionMarker, error) {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT scope_id, source_id, completed_at
		FROM ingestion_markers WHERE scope_id = ?
		ORDER BY source_id
	`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer rows.Close()

	markers := make([]domain.IngestionMarker, 0)
	for rows.Next() {
		var m domain.IngestionMarker
		var completedAt sql.NullTime
		if err := rows.Scan(&m.ScopeID, &m.SourceID, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		if completedAt.Valid {
			m.CompletedAt = completedAt.Time
		}
		markers = append(markers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating markers: %w", err)
	}

	return markers, nil
}

// ==================== Quiz Store ====================

// quizStore implements driven.QuizStore.
type quizStore struct {
	store *Store
}

var _ driven.QuizStore = (*quizStore)(nil)

// Save stores or replaces a quiz document.
func (q *quizStore) Save(ctx context.Context, doc *domain.QuizDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: quiz id is required", domain.ErrInvalidInput)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling quiz: %w", err)
	}

	generatedAt := doc.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = q.store.now()
	}

	_, err = q.store.db.ExecContext(ctx, `
		INSERT INTO quizzes (id, scope_id, status, generated_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scope_id = excluded.scope_id,
			status = excluded.status,
			generated_at = excluded.generated_at,
			document = excluded.document
	`, doc.ID, doc.ScopeID, string(doc.Status), generatedAt.UTC(), string(docJSON))
	if err != nil {
		return fmt.Errorf("saving quiz: %w", err)
	}
	return nil
}

// Get retrieves a quiz by ID.
func (q *quizStore) Get(ctx context.Context, id string) (*domain.QuizDocument, error) {
	var docJSON string
	err := q.store.db.QueryRowContext(ctx, "SELECT document FROM quizzes WHERE id = ?", id).Scan(&docJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning quiz: %w", err)
	}
	return unmarshalQuiz(docJSON)
}

// List returns quizzes for a scope, or all scopes when scopeID is empty, newest first.
func (q *quizStore) List(ctx context.Context, scopeID string) ([]domain.QuizDocument, error) {
	query := "SELECT document FROM quizzes"
	var args []any
	if scopeID != "" {
		query += " WHERE scope_id = ?"
		args = append(args, scopeID)
	}
	query += " ORDER BY generated_at DESC, id"

	rows, err := q.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.QuizDocument, 0)
	for rows.Next() {
		var docJSON string
		if err := rows.Scan(&docJSON); err != nil {
			return nil, fmt.Errorf("scanning quiz: %w", err)
		}
		doc, err := unmarshalQuiz(docJSON)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// Delete removes a quiz.
func (q *quizStore) Delete(ctx context.Context, id string) error {
	_, err := q.store.db.ExecContext(ctx, "DELETE FROM quizzes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting quiz: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// unmarshalQuiz decodes a stored quiz document.
func unmarshalQuiz(data string) (*domain.QuizDocument, error) {
	var doc domain.QuizDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling quiz: %w", err)
	}
	return &doc, nil
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
