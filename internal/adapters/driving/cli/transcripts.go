package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/transcript/filesystem"
	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// loadSources reads transcripts from files and directories.
// A directory contributes every transcript directly inside it.
func loadSources(ctx context.Context, paths []string) ([]domain.Source, error) {
	var sources []domain.Source
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		if info.IsDir() {
			dirSources, err := readDir(ctx, filesystem.NewSource(path))
			if err != nil {
				return nil, err
			}
			sources = append(sources, dirSources...)
			continue
		}

		id, ok := filesystem.SourceIDFromPath(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a %s transcript", domain.ErrInvalidInput, path, filesystem.Extension)
		}
		text, err := filesystem.NewSource(filepath.Dir(path)).Read(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, domain.Source{ID: id, Text: text})
	}
	return sources, nil
}

func readDir(ctx context.Context, src *filesystem.Source) ([]domain.Source, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.Dir(), err)
	}

	sources := make([]domain.Source, 0, len(ids))
	for _, id := range ids {
		text, err := src.Read(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", id, err)
		}
		sources = append(sources, domain.Source{ID: id, Text: text})
	}
	return sources, nil
}
