// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hashembed "github.com/custodia-labs/quizrag/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/quizrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/quizrag/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/quizrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/quizrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService  driven.EmbeddingService
	GenerationService driven.GenerationService
	Warnings          []string // Non-fatal issues, e.g. generation not configured.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.GenerationService != nil {
		r.GenerationService.Close()
	}
}

// InitServices creates and validates both AI services.
// The embedding service is required. A missing or unreachable generation
// service is recorded as a warning so ingestion still works without it.
func InitServices(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'quizrag settings' to fix",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	result := &InitResult{EmbeddingService: embedder}

	generator, err := CreateAndValidateGenerationService(&settings.Generation)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case generator == nil:
		result.Warnings = append(result.Warnings,
			"generation provider not configured; quizzes cannot be generated")
	default:
		result.GenerationService = generator
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quizrag settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quizrag settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerationService creates a generation service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quizrag settings' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quizrag settings' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateGenerationConfig validates a generation configuration by creating a service and pinging it.
func ValidateGenerationConfig(settings *domain.GenerationSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured. A positive RequestsPerMinute
// wraps the service in a rate limiter.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	case domain.AIProviderHash:
		svc = hashembed.NewEmbeddingService(settings.Dimensions)

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if limiter := NewRateLimiter(settings.RequestsPerMinute); limiter != nil {
		svc = NewRateLimitedEmbedding(svc, limiter)
	}
	return svc, nil
}

// CreateGenerationService creates the appropriate generation service based on settings.
// Returns nil if the provider is not configured. A positive RequestsPerMinute
// wraps the service in a rate limiter.
func CreateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.GenerationService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaGeneration(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIGeneration(settings, openaillm.DefaultBaseURL)

	case domain.AIProviderGroq:
		svc, err = createOpenAIGeneration(settings, openaillm.GroqBaseURL)

	default:
		return nil, fmt.Errorf("%w: generation provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if limiter := NewRateLimiter(settings.RequestsPerMinute); limiter != nil {
		svc = NewRateLimitedGeneration(svc, limiter)
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createOllamaGeneration creates an Ollama generation service.
func createOllamaGeneration(settings *domain.GenerationSettings) driven.GenerationService {
	return ollamallm.NewGenerationService(ollamallm.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// createOpenAIGeneration creates an OpenAI-compatible generation service.
func createOpenAIGeneration(settings *domain.GenerationSettings, defaultBaseURL string) (driven.GenerationService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaillm.NewGenerationService(openaillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: baseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}
