// Package cli provides the quizrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Pipeline is the set of services the pipeline commands run against.
type Pipeline struct {
	Ingestion driving.IngestionService
	Quiz      driving.QuizService
	Archive   driving.QuizArchive

	// Metrics serves the metrics endpoint in HTTP mode. Optional.
	Metrics http.Handler

	// Close releases the pipeline's resources. Optional.
	Close func() error
}

// PipelineFactory builds the pipeline from the current settings.
type PipelineFactory func(ctx context.Context, settings *domain.AppSettings) (*Pipeline, error)

var (
	settingsService driving.SettingsService
	pipelineFactory PipelineFactory
	pipeline        *Pipeline
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "quizrag",
	Short: "Generate quizzes from lecture transcripts",
	Long: `quizrag turns lecture transcripts into multiple-choice quizzes.

Transcripts are chunked, embedded and stored per course or lecture scope.
A quiz request retrieves the most relevant chunks for a topic and asks a
language model to write questions grounded in them.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by all commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetPipelineFactory sets how the pipeline is built on first use.
// Commands that do not need the pipeline never call it, so settings can be
// fixed even when a provider is unreachable.
func SetPipelineFactory(f PipelineFactory) {
	pipelineFactory = f
}

// Execute runs the root command and releases the pipeline afterwards.
func Execute(ctx context.Context) error {
	defer closePipeline()
	return rootCmd.ExecuteContext(ctx)
}

// loadPipeline builds the pipeline once per process.
func loadPipeline(ctx context.Context) (*Pipeline, error) {
	if pipeline != nil {
		return pipeline, nil
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if pipelineFactory == nil {
		return nil, errors.New("pipeline not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	p, err := pipelineFactory(ctx, settings)
	if err != nil {
		return nil, err
	}
	pipeline = p
	return pipeline, nil
}

func closePipeline() {
	if pipeline == nil || pipeline.Close == nil {
		return
	}
	if err := pipeline.Close(); err != nil {
		logger.Warn("closing pipeline: %v", err)
	}
	pipeline = nil
}

// pipelineDefaults returns the configured defaults, or the built-in ones
// when settings cannot be read.
func pipelineDefaults() domain.PipelineSettings {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			return settings.Pipeline
		}
	}
	return domain.DefaultAppSettings().Pipeline
}
