package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	pingErr     error

	embedding  []string
	generation []string
	backend    domain.VectorBackend
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	m.generation = []string{string(provider), model, apiKey}
	m.settings.Generation.Provider = provider
	m.settings.Generation.Model = model
	m.settings.Generation.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	m.backend = backend
	m.settings.VectorStore.Backend = backend
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateGenerationConfig() error {
	return m.pingErr
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	mu      sync.Mutex
	err     error
	skip    bool
	scope   string
	force   bool
	sources []domain.Source

	status    *domain.ScopeStatus
	statusErr error
	forgotten []string
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
	m.force = force
	m.sources = append(m.sources, source)
	if m.err != nil {
		return nil, m.err
	}
	if m.skip && !force {
		return &domain.IngestResult{ScopeID: scopeID, SourceID: source.ID, Skipped: true}, nil
	}
	return &domain.IngestResult{ScopeID: scopeID, SourceID: source.ID, Chunks: 1 + len(source.Text)/512}, nil
}

func (m *mockIngestionService) IngestBatch(
	ctx context.Context,
	scopeID string,
	sources []domain.Source,
	force bool,
) ([]domain.IngestResult, error) {
	var results []domain.IngestResult
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
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.status == nil {
		return &domain.ScopeStatus{ScopeID: scopeID, Sources: []domain.IngestionMarker{}}, nil
	}
	return m.status, nil
}

func (m *mockIngestionService) Forget(_ context.Context, scopeID, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.scope = scopeID
	m.forgotten = append(m.forgotten, sourceID)
	return nil
}

func (m *mockIngestionService) ingested() []domain.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Source(nil), m.sources...)
}

// mockQuizService is a mock implementation of driving.QuizService.
type mockQuizService struct {
	doc     *domain.QuizDocument
	err     error
	request domain.QuizRequest
}

func (m *mockQuizService) GenerateQuiz(_ context.Context, req domain.QuizRequest) (*domain.QuizDocument, error) {
	m.request = req
	if m.err != nil {
		return nil, m.err
	}
	doc := *m.doc
	doc.ScopeID = req.ScopeID
	doc.Topic = req.Topic
	return &doc, nil
}

// mockArchive is a mock implementation of driving.QuizArchive.
type mockArchive struct {
	quizzes map[string]domain.QuizDocument
	err     error
}

func newMockArchive() *mockArchive {
	return &mockArchive{quizzes: make(map[string]domain.QuizDocument)}
}

func (m *mockArchive) Save(_ context.Context, doc *domain.QuizDocument) error {
	if m.err != nil {
		return m.err
	}
	m.quizzes[doc.ID] = *doc
	return nil
}

func (m *mockArchive) Get(_ context.Context, id string) (*domain.QuizDocument, error) {
	doc, ok := m.quizzes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockArchive) List(_ context.Context, scopeID string) ([]domain.QuizDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.QuizDocument
	for _, doc := range m.quizzes {
		if scopeID == "" || doc.ScopeID == scopeID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockArchive) Delete(_ context.Context, id string) error {
	if _, ok := m.quizzes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettingsService
	ingestion *mockIngestionService
	quiz      *mockQuizService
	archive   *mockArchive
}

func sampleQuizDocument() *domain.QuizDocument {
	q := domain.NewQuizQuestion("Which law states that entropy never decreases?")
	q.Options["A"] = "First law"
	q.Options["B"] = "Second law"
	q.Options["C"] = "Third law"
	q.Options["D"] = "Zeroth law"
	q.CorrectAnswer = "B"
	q.Explanation = "The second law of thermodynamics."
	q.Difficulty = domain.DifficultyMedium

	return &domain.QuizDocument{
		ID:           "quiz-1",
		NumQuestions: 1,
		Status:       domain.QuizStatusSuccess,
		Questions:    []domain.QuizQuestion{q},
	}
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		settings:  newMockSettingsService(),
		ingestion: &mockIngestionService{},
		quiz:      &mockQuizService{doc: sampleQuizDocument()},
		archive:   newMockArchive(),
	}

	origSettings, origPipeline, origFactory := settingsService, pipeline, pipelineFactory
	settingsService = ts.settings
	pipelineFactory = nil
	pipeline = &Pipeline{
		Ingestion: ts.ingestion,
		Quiz:      ts.quiz,
		Archive:   ts.archive,
	}

	return ts, func() {
		settingsService, pipeline, pipelineFactory = origSettings, origPipeline, origFactory
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
