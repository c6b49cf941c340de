// Package file provides an IngestionTracker that keeps one marker file per
// ingested source under <dir>/<scope_id>/<source_id>.done.
//
// Markers are written to a temporary file and renamed into place while
// holding a per-scope file lock, so concurrent processes never observe a
// partial marker.
package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure IngestionTracker implements the interface.
var _ driven.IngestionTracker = (*IngestionTracker)(nil)

const (
	markerExt      = ".done"
	lockName       = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// IngestionTracker stores ingestion markers as files.
type IngestionTracker struct {
	dir string
	now func() time.Time
}

// NewIngestionTracker creates a tracker rooted at dir.
// If dir is empty, defaults to ~/.quizrag/markers.
func NewIngestionTracker(dir string) (*IngestionTracker, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".quizrag", "markers")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating marker directory: %w", err)
	}
	return &IngestionTracker{dir: dir, now: time.Now}, nil
}

// Dir returns the marker root directory.
func (t *IngestionTracker) Dir() string {
	return t.dir
}

// HasIngested reports whether a marker file exists.
func (t *IngestionTracker) HasIngested(_ context.Context, scopeID, sourceID string) (bool, error) {
	path, err := t.markerPath(scopeID, sourceID)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking marker: %w", err)
}

// MarkIngested writes the marker, recording the completion time.
func (t *IngestionTracker) MarkIngested(ctx context.Context, scopeID, sourceID string) error {
	path, err := t.markerPath(scopeID, sourceID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating scope directory: %w", err)
	}

	return t.withScopeLock(ctx, scopeID, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(path), ".marker-*")
		if err != nil {
			return fmt.Errorf("creating marker: %w", err)
		}
		defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

		if _, err := tmp.WriteString(t.now().UTC().Format(time.RFC3339Nano)); err != nil {
			tmp.Close()
			return fmt.Errorf("writing marker: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("closing marker: %w", err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			return fmt.Errorf("renaming marker: %w", err)
		}
		return nil
	})
}

// Clear removes the marker. A missing marker is not an error.
func (t *IngestionTracker) Clear(ctx context.Context, scopeID, sourceID string) error {
	path, err := t.markerPath(scopeID, sourceID)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return t.withScopeLock(ctx, scopeID, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing marker: %w", err)
		}
		return nil
	})
}

// List returns the markers for a scope, ordered by source ID.
func (t *IngestionTracker) List(_ context.Context, scopeID string) ([]domain.IngestionMarker, error) {
	if err := domain.ValidateScopeID(scopeID); err != nil {
		return nil, err
	}

	markers := make([]domain.IngestionMarker, 0)
	entries, err := os.ReadDir(filepath.Join(t.dir, scopeID))
	if errors.Is(err, os.ErrNotExist) {
		return markers, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading marker directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, markerExt) {
			continue
		}
		sourceID, err := url.PathUnescape(strings.TrimSuffix(name, markerExt))
		if err != nil {
			continue
		}

		marker := domain.IngestionMarker{ScopeID: scopeID, SourceID: sourceID}
		if data, err := os.ReadFile(filepath.Join(t.dir, scopeID, name)); err == nil {
			if at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data))); err == nil {
				marker.CompletedAt = at
			}
		}
		markers = append(markers, marker)
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].SourceID < markers[j].SourceID })
	return markers, nil
}

// markerPath returns the marker file for a source. It touches nothing on disk.
// Source ids are path-escaped so any id maps to a single file name.
func (t *IngestionTracker) markerPath(scopeID, sourceID string) (string, error) {
	if err := domain.ValidateScopeID(scopeID); err != nil {
		return "", err
	}
	if sourceID == "" {
		return "", fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}

	return filepath.Join(t.dir, scopeID, url.PathEscape(sourceID)+markerExt), nil
}

// withScopeLock runs fn while holding the scope's cross-process lock.
func (t *IngestionTracker) withScopeLock(ctx context.Context, scopeID string, fn func() error) error {
	lock := flock.New(filepath.Join(t.dir, scopeID, lockName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring marker lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquiring marker lock: %s is busy", lock.Path())
	}
	defer lock.Unlock() //nolint:errcheck // released on close regardless

	return fn()
}
