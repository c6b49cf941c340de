package driven

import "context"

// GenerationService produces text completions for quiz prompts.
// This is an optional service - when nil, quizzes cannot be generated.
//
// A call is at most one attempt. Retry policy belongs to the caller.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Groq (OpenAI-compatible endpoint)
//   - Ollama (local models)
type GenerationService interface {
	// Generate produces a single-turn completion for prompt and returns the
	// first candidate. No candidates, an empty candidate or a timeout is an
	// error wrapping domain.ErrGeneration.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
