// Command quizrag turns lecture transcripts into multiple-choice quizzes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/quizrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quizrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/quizrag/internal/app"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is normal; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}

	cli.SetVersion(version)
	cli.SetSettingsService(services.NewSettingsService(configStore, ai.NewConfigValidator()))
	cli.SetPipelineFactory(buildPipeline)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

func buildPipeline(ctx context.Context, settings *domain.AppSettings) (*cli.Pipeline, error) {
	a, err := app.Build(ctx, settings)
	if err != nil {
		return nil, err
	}

	return &cli.Pipeline{
		Ingestion: a.Ingestion,
		Quiz:      a.Quiz,
		Archive:   a.Archive,
		Metrics:   a.Metrics.Handler(),
		Close:     a.Close,
	}, nil
}
