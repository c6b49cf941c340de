package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, storage backends and pipeline defaults.

Settings are stored in ~/.quizrag/config.toml. API keys and endpoints can also
be supplied through environment variables or a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to ingest transcripts and retrieve chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsGenerationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Configure generation provider",
	Long:  `Configure the language model that writes quiz questions.`,
	RunE:  runSettingsGeneration,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Select vector store",
	Long: `Select where transcript embeddings are stored.

Available backends:
  sqlite   - Local SQLite database (default, no setup required)
  memory   - In-process only, lost on exit
  qdrant   - Qdrant server (vector_store.url)
  pgvector - PostgreSQL with pgvector (vector_store.dsn)`,
	RunE: runSettingsVector,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	settingsCmd.AddCommand(settingsVectorCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	if settings.Embedding.RequestsPerMinute > 0 {
		cmd.Printf("  Requests per minute: %d\n", settings.Embedding.RequestsPerMinute)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	// Generation settings
	cmd.Println("[Generation]")
	if settings.Generation.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.Generation.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.Generation.Model)
	}
	if settings.Generation.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Generation.BaseURL)
	}
	printAPIKey(cmd, settings.Generation.Provider, settings.Generation.APIKey)
	cmd.Printf("  Timeout: %s\n", settings.Generation.Timeout)
	if settings.Generation.RequestsPerMinute > 0 {
		cmd.Printf("  Requests per minute: %d\n", settings.Generation.RequestsPerMinute)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Generation.IsConfigured()))
	cmd.Println()

	// Storage settings
	cmd.Println("[Storage]")
	cmd.Printf("  Vector store: %s\n", settings.VectorStore.Backend)
	switch settings.VectorStore.Backend {
	case domain.VectorBackendQdrant:
		cmd.Printf("  Qdrant URL: %s\n", settings.VectorStore.URL)
	case domain.VectorBackendPGVector:
		cmd.Printf("  DSN: %s\n", maskDSN(settings.VectorStore.DSN))
	}
	cmd.Printf("  Ingestion tracker: %s\n", settings.Tracker)
	if settings.DataDir != "" {
		cmd.Printf("  Data directory: %s\n", settings.DataDir)
	}
	cmd.Println()

	// Pipeline defaults
	cmd.Println("[Pipeline]")
	cmd.Printf("  Chunk size: %d characters\n", settings.Pipeline.ChunkSize)
	cmd.Printf("  Top K: %d\n", settings.Pipeline.TopK)
	cmd.Printf("  Questions: %d\n", settings.Pipeline.NumQuestions)
	cmd.Printf("  Topic: %s\n", settings.Pipeline.Topic)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'quizrag settings embedding' or 'quizrag settings generation' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureGenerationProvider(cmd, reader)
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Vector Store")
	cmd.Println("-------------------")
	backends := []domain.VectorBackend{
		domain.VectorBackendSQLite,
		domain.VectorBackendMemory,
		domain.VectorBackendQdrant,
		domain.VectorBackendPGVector,
	}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("\nEnter choice: ")
	idx := parseChoice(readLine(reader), len(backends), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := backends[idx-1]
	if err := settingsService.SetVectorBackend(selected); err != nil {
		return fmt.Errorf("failed to set vector store: %w", err)
	}
	cmd.Printf("Vector store set to: %s\n", selected)

	if selected == domain.VectorBackendPGVector {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && settings.VectorStore.DSN == "" {
			cmd.Println("\nNote: set vector_store.dsn in config.toml or QUIZRAG_PGVECTOR_DSN.")
		}
	}
	return nil
}

//nolint:dupl // mirrors configureGenerationProvider
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // mirrors configureEmbeddingProvider
func configureGenerationProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Generation Provider")
	providers := domain.AllGenerationProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultGenerationModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetGenerationProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure generation provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateGenerationConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("generation configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Generation provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskDSN(dsn string) string {
	if dsn == "" {
		return "(not set)"
	}
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "****" + dsn[at:]
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
