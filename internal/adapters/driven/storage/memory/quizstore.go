package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure QuizStore implements the interface.
var _ driven.QuizStore = (*QuizStore)(nil)

// QuizStore is an in-memory implementation of driven.QuizStore.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.QuizDocument
}

// NewQuizStore creates a new in-memory quiz store.
func NewQuizStore() *QuizStore {
	return &QuizStore{
		quizzes: make(map[string]domain.QuizDocument),
	}
}

// Save stores or replaces a quiz document.
func (s *QuizStore) Save(_ context.Context, doc *domain.QuizDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: quiz id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[doc.ID] = *doc
	return nil
}

// Get retrieves a quiz by ID.
func (s *QuizStore) Get(_ context.Context, id string) (*domain.QuizDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.quizzes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// List returns quizzes for a scope, or all scopes when scopeID is empty, newest first.
func (s *QuizStore) List(_ context.Context, scopeID string) ([]domain.QuizDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.QuizDocument, 0, len(s.quizzes))
	for _, doc := range s.quizzes {
		if scopeID == "" || doc.ScopeID == scopeID {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	return result, nil
}

// Delete removes a quiz.
func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, id)
	return nil
}
