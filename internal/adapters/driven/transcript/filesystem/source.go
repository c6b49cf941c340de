// Package filesystem reads plain-text transcripts from a directory and
// watches it for new ones.
//
// A transcript with source ID "lecture-42" lives at <dir>/lecture-42.txt.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Extension is the file extension of transcript files.
const Extension = ".txt"

// Ensure Source implements the interface.
var _ driven.TranscriptSource = (*Source)(nil)

// Source reads transcripts from a directory.
type Source struct {
	dir string
}

// NewSource creates a transcript source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the transcript directory.
func (s *Source) Dir() string {
	return s.dir
}

// Read returns the transcript text for sourceID.
func (s *Source) Read(ctx context.Context, sourceID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateSourceID(sourceID); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.path(sourceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: transcript %q", domain.ErrNotFound, sourceID)
		}
		return "", fmt.Errorf("read transcript %q: %w", sourceID, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: transcript %q is not valid UTF-8", domain.ErrInvalidInput, sourceID)
	}
	return string(data), nil
}

// List returns the IDs of all transcripts in the directory, sorted.
// Hidden files and subdirectories are ignored.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := SourceIDFromPath(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Source) path(sourceID string) string {
	return filepath.Join(s.dir, sourceID+Extension)
}

// SourceIDFromPath returns the source ID for a transcript file path.
// Returns false for hidden files and files without the transcript extension.
func SourceIDFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if isHidden(name) || filepath.Ext(name) != Extension {
		return "", false
	}
	id := strings.TrimSuffix(name, Extension)
	if id == "" {
		return "", false
	}
	return id, true
}

func validateSourceID(sourceID string) error {
	if strings.TrimSpace(sourceID) == "" {
		return fmt.Errorf("%w: source ID is required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(sourceID, `/\`) || sourceID == "." || sourceID == ".." {
		return fmt.Errorf("%w: source ID %q must be a plain file name", domain.ErrInvalidInput, sourceID)
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
