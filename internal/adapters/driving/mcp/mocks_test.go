package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result *domain.IngestResult
	err    error

	mu      sync.Mutex
	scope   string
	sources []domain.Source
	force   bool

	status *domain.ScopeStatus
}

func (m *mockIngestionService) Ingest(
	_ context.Context,
	scopeID string,
	source domain.Source,
	force bool,
) (*domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope = scopeID
	m.sources = append(m.sources, source)
	m.force = force
	return m.result, m.err
}

func (m *mockIngestionService) IngestBatch(
	ctx context.Context,
	scopeID string,
	sources []domain.Source,
	force bool,
) ([]domain.IngestResult, error) {
	results := make([]domain.IngestResult, 0, len(sources))
	for _, src := range sources {
		r, err := m.Ingest(ctx, scopeID, src, force)
		if err != nil {
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func (m *mockIngestionService) Status(_ context.Context, scopeID string) (*domain.ScopeStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope = scopeID
	return m.status, m.err
}

func (m *mockIngestionService) Forget(_ context.Context, scopeID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope = scopeID
	return m.err
}

// mockQuizService is a mock implementation of driving.QuizService.
type mockQuizService struct {
	doc     *domain.QuizDocument
	err     error
	request domain.QuizRequest
}

func (m *mockQuizService) GenerateQuiz(_ context.Context, req domain.QuizRequest) (*domain.QuizDocument, error) {
	m.request = req
	return m.doc, m.err
}

// mockArchive is a mock implementation of driving.QuizArchive.
type mockArchive struct {
	quizzes []domain.QuizDocument
	quiz    *domain.QuizDocument
	saved   []*domain.QuizDocument
	err     error
}

func (m *mockArchive) Save(_ context.Context, doc *domain.QuizDocument) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, doc)
	return nil
}

func (m *mockArchive) Get(_ context.Context, _ string) (*domain.QuizDocument, error) {
	return m.quiz, m.err
}

func (m *mockArchive) List(_ context.Context, _ string) ([]domain.QuizDocument, error) {
	return m.quizzes, m.err
}

func (m *mockArchive) Delete(_ context.Context, _ string) error {
	return m.err
}

func validPorts() *Ports {
	return &Ports{
		Ingestion: &mockIngestionService{},
		Quiz:      &mockQuizService{},
	}
}
