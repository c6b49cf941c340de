package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir           = "data_dir"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedRPM          = "embedding.requests_per_minute"
	keyGenProvider       = "generation.provider"
	keyGenModel          = "generation.model"
	keyGenBaseURL        = "generation.base_url"
	keyGenAPIKey         = "generation.api_key"
	keyGenTimeout        = "generation.timeout"
	keyGenRPM            = "generation.requests_per_minute"
	keyGenMaxTokens      = "generation.max_tokens"
	keyGenTemperature    = "generation.temperature"
	keyVectorBackend     = "vector_store.backend"
	keyVectorURL         = "vector_store.url"
	keyVectorAPIKey      = "vector_store.api_key"
	keyVectorDSN         = "vector_store.dsn"
	keyTrackerBackend    = "tracker.backend"
	keyPipelineChunkSize = "pipeline.chunk_size"
	keyPipelineTopK      = "pipeline.top_k"
	keyPipelineQuestions = "pipeline.num_questions"
	keyPipelineTopic     = "pipeline.topic"
)

// Environment variables that override secrets and endpoints from the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvEmbeddingAPIKey  = "QUIZRAG_EMBEDDING_API_KEY"
	EnvGenerationAPIKey = "QUIZRAG_GENERATION_API_KEY"
	EnvGroqAPIKey       = "GROQ_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvQdrantURL        = "QDRANT_URL"
	EnvPGVectorDSN      = "QUIZRAG_PGVECTOR_DSN"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// Environment variables take precedence over stored secrets and endpoints.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.configStore.GetString(keyDataDir),
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDimensions),
			RequestsPerMinute: s.configStore.GetInt(keyEmbedRPM),
		},
		Generation: domain.GenerationSettings{
			Provider:          s.getProvider(keyGenProvider, defaults.Generation.Provider),
			Model:             s.configStore.GetString(keyGenModel),
			BaseURL:           s.configStore.GetString(keyGenBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyGenAPIKey),
			Timeout:           s.getDuration(keyGenTimeout, defaults.Generation.Timeout),
			RequestsPerMinute: s.configStore.GetInt(keyGenRPM),
			MaxTokens:         s.configStore.GetInt(keyGenMaxTokens),
			Temperature:       s.configStore.GetFloat(keyGenTemperature),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend: s.getVectorBackend(defaults.VectorStore.Backend),
			URL:     s.getString(keyVectorURL, defaults.VectorStore.URL),
			APIKey:  s.configStore.GetString(keyVectorAPIKey),
			DSN:     s.configStore.GetString(keyVectorDSN),
		},
		Tracker: s.getTrackerBackend(defaults.Tracker),
		Pipeline: domain.PipelineSettings{
			ChunkSize:    s.getInt(keyPipelineChunkSize, defaults.Pipeline.ChunkSize),
			TopK:         s.getInt(keyPipelineTopK, defaults.Pipeline.TopK),
			NumQuestions: s.getInt(keyPipelineQuestions, defaults.Pipeline.NumQuestions),
			Topic:        s.getString(keyPipelineTopic, defaults.Pipeline.Topic),
		},
	}

	if settings.Generation.Model == "" {
		settings.Generation.Model = domain.DefaultGenerationModels()[settings.Generation.Provider]
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overlays environment variables onto settings.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v, ok := s.env(EnvEmbeddingAPIKey); ok {
		settings.Embedding.APIKey = v
	} else if v, ok := s.env(EnvOpenAIAPIKey); ok && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = v
	}

	if v, ok := s.env(EnvGenerationAPIKey); ok {
		settings.Generation.APIKey = v
	} else if v, ok := s.env(providerKeyEnv(settings.Generation.Provider)); ok {
		settings.Generation.APIKey = v
	}

	if v, ok := s.env(EnvQdrantURL); ok {
		settings.VectorStore.URL = v
	}
	if v, ok := s.env(EnvPGVectorDSN); ok {
		settings.VectorStore.DSN = v
	}
}

// providerKeyEnv returns the conventional API key variable for a provider.
func providerKeyEnv(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderGroq:
		return EnvGroqAPIKey
	case domain.AIProviderOpenAI:
		return EnvOpenAIAPIKey
	default:
		return ""
	}
}

func (s *SettingsService) env(name string) (string, bool) {
	if name == "" || s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(name)
	return v, ok && v != ""
}

// Save persists application settings.
// Secrets supplied through the environment are not written to the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRPM, settings.Embedding.RequestsPerMinute},
		{keyGenProvider, settings.Generation.Provider.String()},
		{keyGenModel, settings.Generation.Model},
		{keyGenBaseURL, settings.Generation.BaseURL},
		{keyGenTimeout, settings.Generation.Timeout.String()},
		{keyGenRPM, settings.Generation.RequestsPerMinute},
		{keyGenMaxTokens, settings.Generation.MaxTokens},
		{keyGenTemperature, settings.Generation.Temperature},
		{keyVectorBackend, string(settings.VectorStore.Backend)},
		{keyVectorURL, settings.VectorStore.URL},
		{keyTrackerBackend, string(settings.Tracker)},
		{keyPipelineChunkSize, settings.Pipeline.ChunkSize},
		{keyPipelineTopK, settings.Pipeline.TopK},
		{keyPipelineQuestions, settings.Pipeline.NumQuestions},
		{keyPipelineTopic, settings.Pipeline.Topic},
	}
	if settings.DataDir != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyDataDir, settings.DataDir})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key, value string
		envs       []string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, []string{EnvEmbeddingAPIKey, EnvOpenAIAPIKey}},
		{keyGenAPIKey, settings.Generation.APIKey, []string{EnvGenerationAPIKey, providerKeyEnv(settings.Generation.Provider)}},
		{keyVectorAPIKey, settings.VectorStore.APIKey, nil},
		{keyVectorDSN, settings.VectorStore.DSN, []string{EnvPGVectorDSN}},
	}
	for _, secret := range secrets {
		if secret.value == "" || s.fromEnv(secret.value, secret.envs...) {
			continue
		}
		if err := s.configStore.Set(secret.key, secret.value); err != nil {
			return fmt.Errorf("save %s: %w", secret.key, err)
		}
	}

	return nil
}

// fromEnv reports whether value was supplied by one of the variables.
func (s *SettingsService) fromEnv(value string, names ...string) bool {
	for _, name := range names {
		if v, ok := s.env(name); ok && v == value {
			return true
		}
	}
	return false
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if _, ok := domain.DefaultEmbeddingModels()[provider]; !ok {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate API key if required
	if apiKey == "" {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Set base URL based on provider type
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Scopes created from now on take the model's dimension
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	} else {
		settings.Embedding.Dimensions = 0
	}

	return s.Save(settings)
}

// SetGenerationProvider configures the generation provider.
func (s *SettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid generation provider: %s", provider)
	}
	if _, ok := domain.DefaultGenerationModels()[provider]; !ok {
		return fmt.Errorf("provider %s does not support generation", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" && settings.Generation.Provider == provider {
		apiKey = settings.Generation.APIKey
	}
	if apiKey == "" {
		apiKey, _ = s.env(providerKeyEnv(provider))
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Generation.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Generation.Model = model
	} else {
		settings.Generation.Model = domain.DefaultGenerationModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.Generation.BaseURL == "" {
			settings.Generation.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers use the client's endpoint for the provider
		settings.Generation.BaseURL = ""
	}

	settings.Generation.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects the vector store.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.VectorStore.Backend = backend
	return s.Save(settings)
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if settings.Generation.Provider != "" && !settings.Generation.IsConfigured() {
		return fmt.Errorf("generation provider %q is not configured", settings.Generation.Provider)
	}

	switch settings.VectorStore.Backend {
	case domain.VectorBackendQdrant:
		if settings.VectorStore.URL == "" {
			return fmt.Errorf("vector store %q requires a URL", settings.VectorStore.Backend)
		}
	case domain.VectorBackendPGVector:
		if settings.VectorStore.DSN == "" {
			return fmt.Errorf("vector store %q requires a DSN", settings.VectorStore.Backend)
		}
	}

	if settings.Pipeline.ChunkSize <= 0 || settings.Pipeline.TopK <= 0 || settings.Pipeline.NumQuestions <= 0 {
		return fmt.Errorf("pipeline chunk_size, top_k and num_questions must be positive")
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
func (s *SettingsService) ValidateGenerationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateGeneration(&settings.Generation)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getTrackerBackend(defaultVal domain.TrackerBackend) domain.TrackerBackend {
	backend := domain.TrackerBackend(s.configStore.GetString(keyTrackerBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
