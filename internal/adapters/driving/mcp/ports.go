package mcp

import (
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingestion embeds transcripts into scopes.
	Ingestion driving.IngestionService

	// Quiz runs the generation pipeline.
	Quiz driving.QuizService

	// Archive stores generated quizzes. Optional.
	Archive driving.QuizArchive
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Quiz == nil {
		return ErrMissingQuizService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}
