// Package app assembles the quiz pipeline from application settings.
// It selects storage backends, creates the AI services and wires them into
// the core services used by the CLI and MCP adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/metrics"
	"github.com/custodia-labs/quizrag/internal/chunker"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/core/services"
	"github.com/custodia-labs/quizrag/internal/logger"
	"github.com/custodia-labs/quizrag/internal/quizparser"
)

// App holds the wired pipeline services and the resources behind them.
type App struct {
	Settings  *domain.AppSettings
	Ingestion *services.IngestionService
	Quiz      *services.QuizOrchestrator
	Archive   *services.QuizArchiveService
	Metrics   *metrics.Prometheus

	// Warnings are non-fatal setup issues, e.g. generation not configured.
	Warnings []string

	closers []func() error
}

// Build wires the pipeline for settings. The embedding provider must be
// reachable; a missing generation provider only adds a warning.
func Build(ctx context.Context, settings *domain.AppSettings) (*App, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	logger.Section("Pipeline Setup")

	a := &App{
		Settings: settings,
		Metrics:  metrics.NewPrometheus(metrics.DefaultNamespace),
	}

	aiServices, err := ai.InitServices(settings)
	if err != nil {
		return nil, fmt.Errorf("initialising AI services: %w", err)
	}
	a.closers = append(a.closers, func() error {
		aiServices.Close()
		return nil
	})
	a.Warnings = append(a.Warnings, aiServices.Warnings...)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	stores, err := openStores(ctx, settings)
	if err != nil {
		a.Close() //nolint:errcheck // returning the open error
		return nil, err
	}
	a.closers = append(a.closers, stores.close)

	prompts := services.NewPromptBuilder(quizparser.DefaultFormat())
	promptStore, err := file.NewPromptStore(promptDir(settings.DataDir))
	if err != nil {
		logger.Warn("prompt store unavailable, using built-in prompt: %v", err)
	} else {
		prompts.SetPromptStore(promptStore)
	}

	a.Ingestion = services.NewIngestionService(
		chunker.New(chunker.WithChunkSize(settings.Pipeline.ChunkSize)),
		aiServices.EmbeddingService,
		stores.index,
		stores.tracker,
	)
	a.Ingestion.SetMetrics(a.Metrics)

	a.Quiz = services.NewQuizOrchestrator(
		a.Ingestion,
		services.NewRetriever(aiServices.EmbeddingService, stores.index),
		prompts,
		aiServices.GenerationService,
		quizparser.New(quizparser.DefaultFormat()),
	)
	a.Quiz.SetMetrics(a.Metrics)
	a.Quiz.SetGenerateOptions(driven.GenerateOptions{
		MaxTokens:   settings.Generation.MaxTokens,
		Temperature: settings.Generation.Temperature,
	})

	a.Archive = services.NewQuizArchiveService(stores.quizzes)

	logger.Info("pipeline ready: embedding=%s vector=%s tracker=%s",
		aiServices.EmbeddingService.ModelName(), settings.VectorStore.Backend, settings.Tracker)
	return a, nil
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func promptDir(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "prompts")
}
