package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/storage/sqlite"
	trackerfile "github.com/custodia-labs/quizrag/internal/adapters/driven/tracker/file"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// stores groups the storage adapters selected by settings.
type stores struct {
	index   driven.VectorIndex
	tracker driven.IngestionTracker
	quizzes driven.QuizStore

	db *sqlite.Store
}

// openStores opens the vector index, ingestion tracker and quiz store.
// The SQLite database is opened once and shared by every backend that uses it.
// When neither the index nor the tracker is persistent, quizzes stay in memory too.
func openStores(ctx context.Context, settings *domain.AppSettings) (*stores, error) {
	s := &stores{}

	if err := s.openIndex(ctx, settings); err != nil {
		s.close() //nolint:errcheck // returning the open error
		return nil, err
	}
	if err := s.openTracker(settings); err != nil {
		s.close() //nolint:errcheck // returning the open error
		return nil, err
	}

	inMemory := settings.VectorStore.Backend == domain.VectorBackendMemory &&
		settings.Tracker == domain.TrackerBackendMemory
	if inMemory {
		s.quizzes = memory.NewQuizStore()
		return s, nil
	}

	db, err := s.sqlite(settings.DataDir)
	if err != nil {
		s.close() //nolint:errcheck // returning the open error
		return nil, err
	}
	s.quizzes = db.QuizStore()
	return s, nil
}

func (s *stores) openIndex(ctx context.Context, settings *domain.AppSettings) error {
	cfg := settings.VectorStore
	switch cfg.Backend {
	case domain.VectorBackendSQLite, "":
		db, err := s.sqlite(settings.DataDir)
		if err != nil {
			return err
		}
		s.index = db.VectorIndex()

	case domain.VectorBackendMemory:
		s.index = memory.NewVectorIndex()

	case domain.VectorBackendQdrant:
		s.index = qdrant.NewVectorIndex(qdrant.Config{URL: cfg.URL, APIKey: cfg.APIKey})

	case domain.VectorBackendPGVector:
		index, err := pgvector.NewVectorIndex(ctx, pgvector.Config{DSN: cfg.DSN})
		if err != nil {
			return fmt.Errorf("opening pgvector: %w", err)
		}
		s.index = index

	default:
		return fmt.Errorf("%w: vector backend %s", domain.ErrUnsupportedType, cfg.Backend)
	}
	return nil
}

func (s *stores) openTracker(settings *domain.AppSettings) error {
	switch settings.Tracker {
	case domain.TrackerBackendSQLite, "":
		db, err := s.sqlite(settings.DataDir)
		if err != nil {
			return err
		}
		s.tracker = db.IngestionTracker()

	case domain.TrackerBackendFile:
		tracker, err := trackerfile.NewIngestionTracker(markerDir(settings.DataDir))
		if err != nil {
			return fmt.Errorf("opening marker directory: %w", err)
		}
		s.tracker = tracker

	case domain.TrackerBackendMemory:
		s.tracker = memory.NewIngestionTracker()

	default:
		return fmt.Errorf("%w: tracker backend %s", domain.ErrUnsupportedType, settings.Tracker)
	}
	return nil
}

// sqlite opens the shared database on first use.
func (s *stores) sqlite(dataDir string) (*sqlite.Store, error) {
	if s.db != nil {
		return s.db, nil
	}
	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	s.db = db
	return db, nil
}

func (s *stores) close() error {
	var errs []error
	if s.index != nil {
		errs = append(errs, s.index.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func markerDir(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "markers")
}
