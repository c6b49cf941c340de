package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// Ensure QuizOrchestrator implements the interface.
var _ driving.QuizService = (*QuizOrchestrator)(nil)

// QuizParser turns raw generation output into questions.
type QuizParser interface {
	Parse(raw string) []domain.QuizQuestion
}

// QuizOrchestrator runs the quiz pipeline:
// PENDING, CHUNKING, EMBEDDING, RETRIEVING, PROMPTING, GENERATING, PARSING, DONE.
// Any step may move to ERROR. Work committed by earlier steps is kept.
type QuizOrchestrator struct {
	ingestion driving.IngestionService
	retriever *Retriever
	prompts   *PromptBuilder
	generator driven.GenerationService
	parser    QuizParser
	metrics   driven.PipelineMetrics
	genOpts   driven.GenerateOptions

	now   func() time.Time
	newID func() string
}

// NewQuizOrchestrator creates a new quiz orchestrator.
// The generator is optional; without it every request reports a generation failure.
func NewQuizOrchestrator(
	ingestion driving.IngestionService,
	retriever *Retriever,
	prompts *PromptBuilder,
	generator driven.GenerationService,
	parser QuizParser,
) *QuizOrchestrator {
	return &QuizOrchestrator{
		ingestion: ingestion,
		retriever: retriever,
		prompts:   prompts,
		generator: generator,
		parser:    parser,
		metrics:   driven.NopMetrics{},
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// SetMetrics sets the metrics sink. A nil sink disables metrics.
func (o *QuizOrchestrator) SetMetrics(m driven.PipelineMetrics) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	o.metrics = m
}

// SetGenerateOptions sets the options passed to every generation call.
func (o *QuizOrchestrator) SetGenerateOptions(opts driven.GenerateOptions) {
	o.genOpts = opts
}

// quizRun tracks one request through the state machine.
type quizRun struct {
	doc     *domain.QuizDocument
	metrics driven.PipelineMetrics
}

func (r *quizRun) to(state domain.PipelineState) {
	r.doc.Trace = append(r.doc.Trace, state)
	logger.Step(r.doc.ScopeID, state.String())
}

// fail moves the run to ERROR with a caller-facing message.
func (r *quizRun) fail(step domain.PipelineState, message string) *domain.QuizDocument {
	r.metrics.StepFailed(step.String())
	r.to(domain.StateError)
	r.doc.Status = domain.QuizStatusError
	r.doc.Message = message
	r.doc.Questions = nil
	logger.Warn("Quiz generation for %s stopped at %s: %s", r.doc.ScopeID, step, message)
	return r.doc
}

// failErr reports an unexpected failure tagged with its step.
func (r *quizRun) failErr(step domain.PipelineState, err error) *domain.QuizDocument {
	return r.fail(step, fmt.Sprintf("%s: %v", domain.MsgGenerationFailed, domain.NewStepError(step, err)))
}

// GenerateQuiz ingests any supplied sources, then retrieves, prompts,
// generates and parses a quiz for the request's scope.
//
// Expected failures are reported in the returned document with status
// "error". Only an invalid request returns a non-nil error.
func (o *QuizOrchestrator) GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizDocument, error) {
	req = req.WithDefaults()
	if err := domain.ValidateScopeID(req.ScopeID); err != nil {
		return nil, err
	}

	run := &quizRun{
		doc: &domain.QuizDocument{
			ID:           o.newID(),
			ScopeID:      req.ScopeID,
			Topic:        req.Topic,
			NumQuestions: req.NumQuestions,
			GeneratedAt:  o.now(),
		},
		metrics: o.metrics,
	}

	logger.Section("Quiz Generation")
	logger.Debug("Scope: %s, topic: %q, questions: %d, top_k: %d",
		req.ScopeID, req.Topic, req.NumQuestions, req.TopK)
	run.to(domain.StatePending)

	if len(req.Sources) > 0 {
		o.ingest(ctx, run, req)
	}

	run.to(domain.StateRetrieving)
	content, err := o.retriever.Retrieve(ctx, req.ScopeID, req.Topic, req.TopK)
	switch {
	case errors.Is(err, domain.ErrScopeNotFound):
		return run.fail(domain.StateRetrieving, domain.MsgNoRelevantContent), nil
	case err != nil:
		return run.failErr(domain.StateRetrieving, err), nil
	case content == "":
		return run.fail(domain.StateRetrieving, domain.MsgNoRelevantContent), nil
	}
	logger.Debug("Retrieved content: %s", logger.Truncate(content, 200))

	run.to(domain.StatePrompting)
	prompt, err := o.prompts.Build(content, req.NumQuestions)
	if err != nil {
		return run.failErr(domain.StatePrompting, err), nil
	}
	logger.Debug("Prompt: %s", logger.Truncate(prompt, 200))

	run.to(domain.StateGenerating)
	if o.generator == nil {
		return run.failErr(domain.StateGenerating, domain.ErrGenerationUnavailable), nil
	}
	start := time.Now()
	raw, err := o.generator.Generate(ctx, prompt, o.genOpts)
	o.metrics.GenerationLatency(time.Since(start))
	switch {
	case errors.Is(err, domain.ErrNoCandidates):
		return run.fail(domain.StateGenerating, domain.MsgNoGeneration), nil
	case err != nil:
		return run.failErr(domain.StateGenerating, err), nil
	case strings.TrimSpace(raw) == "":
		return run.fail(domain.StateGenerating, domain.MsgNoGeneration), nil
	}
	logger.Debug("Generated %d characters: %s", len(raw), logger.Truncate(raw, 200))

	run.to(domain.StateParsing)
	questions := o.parser.Parse(raw)
	o.metrics.QuestionsParsed(len(questions))
	if len(questions) == 0 {
		return run.fail(domain.StateParsing, domain.MsgNoGeneration), nil
	}
	if len(questions) > req.NumQuestions {
		logger.Debug("Parsed %d questions, keeping %d", len(questions), req.NumQuestions)
		questions = questions[:req.NumQuestions]
	}

	run.to(domain.StateDone)
	run.doc.Status = domain.QuizStatusSuccess
	run.doc.Questions = questions
	logger.Info("Generated %d questions for %s", len(questions), req.ScopeID)
	return run.doc, nil
}

// ingest runs ingestion for the request's sources. Per-source failures are
// logged and do not stop the run; retrieval decides whether enough content exists.
func (o *QuizOrchestrator) ingest(ctx context.Context, run *quizRun, req domain.QuizRequest) {
	if o.ingestion == nil {
		logger.Warn("Ingestion is not configured, skipping %d sources", len(req.Sources))
		return
	}

	results, err := o.ingestion.IngestBatch(ctx, req.ScopeID, req.Sources, req.ForceIngest)
	for _, r := range results {
		if !r.Skipped {
			run.to(domain.StateChunking)
			run.to(domain.StateEmbedding)
			break
		}
	}
	if err != nil {
		logger.Warn("Ingestion finished with errors: %v", err)
	}
}
