package driven

import (
	"context"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// QuizStore archives generated quizzes locally.
type QuizStore interface {
	// Save stores a quiz document. Creates if new, replaces if the ID exists.
	Save(ctx context.Context, doc *domain.QuizDocument) error

	// Get retrieves a quiz by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.QuizDocument, error)

	// List returns archived quizzes, newest first. An empty scopeID lists all scopes.
	List(ctx context.Context, scopeID string) ([]domain.QuizDocument, error)

	// Delete removes a quiz by ID.
	Delete(ctx context.Context, id string) error
}
