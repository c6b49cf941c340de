package driving

import (
	"context"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// IngestionService embeds transcripts into vector scopes.
type IngestionService interface {
	// Ingest chunks, embeds and stores one source in a scope.
	// An already-ingested source is skipped unless force is set.
	Ingest(ctx context.Context, scopeID string, source domain.Source, force bool) (*domain.IngestResult, error)

	// IngestBatch ingests every source. A failing source is logged and
	// skipped; all failures are returned joined after the batch completes.
	IngestBatch(ctx context.Context, scopeID string, sources []domain.Source, force bool) ([]domain.IngestResult, error)

	// Status reports the stored record count and ingestion markers of a scope.
	Status(ctx context.Context, scopeID string) (*domain.ScopeStatus, error)

	// Forget clears the marker of a source so it is ingested again next time.
	Forget(ctx context.Context, scopeID, sourceID string) error
}

// QuizService generates quizzes from ingested scopes.
type QuizService interface {
	// GenerateQuiz runs the pipeline for a request. Expected failures such as
	// missing content or empty generation output are reported in the returned
	// document with status "error". Only invalid requests return an error.
	GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizDocument, error)
}

// QuizArchive manages the local archive of generated quizzes.
type QuizArchive interface {
	// Save archives a quiz document.
	Save(ctx context.Context, doc *domain.QuizDocument) error

	// Get retrieves an archived quiz by ID.
	Get(ctx context.Context, id string) (*domain.QuizDocument, error)

	// List returns archived quizzes for a scope, or all when scopeID is empty.
	List(ctx context.Context, scopeID string) ([]domain.QuizDocument, error)

	// Delete removes an archived quiz.
	Delete(ctx context.Context, id string) error
}
