package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
)

// Ensure QuizArchiveService implements the interface.
var _ driving.QuizArchive = (*QuizArchiveService)(nil)

// QuizArchiveService keeps generated quizzes in a local store.
type QuizArchiveService struct {
	store driven.QuizStore
}

// NewQuizArchiveService creates a new archive service.
func NewQuizArchiveService(store driven.QuizStore) *QuizArchiveService {
	return &QuizArchiveService{store: store}
}

// Save archives a successful quiz document.
func (s *QuizArchiveService) Save(ctx context.Context, doc *domain.QuizDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: quiz document must have an id", domain.ErrInvalidInput)
	}
	if !doc.Succeeded() {
		return fmt.Errorf("%w: only successful quizzes are archived", domain.ErrInvalidInput)
	}
	return s.store.Save(ctx, doc)
}

// Get retrieves an archived quiz by ID.
func (s *QuizArchiveService) Get(ctx context.Context, id string) (*domain.QuizDocument, error) {
	return s.store.Get(ctx, id)
}

// List returns archived quizzes for a scope, or all when scopeID is empty.
func (s *QuizArchiveService) List(ctx context.Context, scopeID string) ([]domain.QuizDocument, error) {
	return s.store.List(ctx, scopeID)
}

// Delete removes an archived quiz.
func (s *QuizArchiveService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
