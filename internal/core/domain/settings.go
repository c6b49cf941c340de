package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq cloud API (OpenAI-compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderHash is the offline deterministic hashing embedder.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderHash:
		return "Hashing embedder (offline, no semantics)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns the providers that can produce embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderHash}
}

// AllGenerationProviders returns the providers that can generate quizzes.
func AllGenerationProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderGroq}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int

	// RequestsPerMinute throttles embedding calls. Zero disables throttling.
	// A batch counts as one call.
	RequestsPerMinute int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderGroq {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds text-generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Groq).
	APIKey string

	// Timeout bounds a single generation call. Expiry is a generation error.
	Timeout time.Duration

	// RequestsPerMinute throttles generation calls. Zero disables throttling.
	RequestsPerMinute int

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness. Zero uses the provider default.
	Temperature float64
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() || g.Provider == AIProviderHash {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the VectorIndex implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendSQLite   VectorBackend = "sqlite"
	VectorBackendMemory   VectorBackend = "memory"
	VectorBackendQdrant   VectorBackend = "qdrant"
	VectorBackendPGVector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant, VectorBackendPGVector:
		return true
	default:
		return false
	}
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the store.
	Backend VectorBackend

	// URL is the Qdrant endpoint.
	URL string

	// APIKey is the optional Qdrant API key.
	APIKey string

	// DSN is the PostgreSQL connection string for pgvector.
	DSN string
}

// TrackerBackend selects the IngestionTracker implementation.
type TrackerBackend string

// Available tracker backends.
const (
	TrackerBackendSQLite TrackerBackend = "sqlite"
	TrackerBackendFile   TrackerBackend = "file"
	TrackerBackendMemory TrackerBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b TrackerBackend) IsValid() bool {
	switch b {
	case TrackerBackendSQLite, TrackerBackendFile, TrackerBackendMemory:
		return true
	default:
		return false
	}
}

// PipelineSettings holds chunking, retrieval and generation defaults.
type PipelineSettings struct {
	ChunkSize    int
	TopK         int
	NumQuestions int
	Topic        string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the SQLite database, marker files and prompts.
	DataDir string

	Embedding   EmbeddingSettings
	Generation  GenerationSettings
	VectorStore VectorStoreSettings
	Tracker     TrackerBackend
	Pipeline    PipelineSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Generation is left unconfigured; embeddings default to a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Generation: GenerationSettings{
			Timeout: 120 * time.Second,
		},
		VectorStore: VectorStoreSettings{
			Backend: VectorBackendSQLite,
			URL:     "http://localhost:6333",
		},
		Tracker: TrackerBackendSQLite,
		Pipeline: PipelineSettings{
			ChunkSize:    DefaultChunkSize,
			TopK:         DefaultTopK,
			NumQuestions: DefaultNumQuestions,
			Topic:        DefaultTopic,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHash:   "hash-768",
	}
}

// DefaultGenerationModels returns default models for each generation provider.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderGroq:   "llama-3.3-70b-versatile",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Offline
		"hash-768": 768,
	}
}
