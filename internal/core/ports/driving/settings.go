package driving

import "github.com/custodia-labs/quizrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetGenerationProvider configures the generation provider.
	SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error

	// SetVectorBackend selects the vector store.
	SetVectorBackend(backend domain.VectorBackend) error

	// Validate checks the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
	ValidateGenerationConfig() error
}
