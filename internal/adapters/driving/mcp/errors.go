// Package mcp provides an MCP (Model Context Protocol) server adapter for quizrag.
// It lets AI assistants ingest lecture transcripts and generate quizzes from them.
package mcp

import "errors"

var (
	// ErrMissingQuizService is returned when the quiz service is not provided.
	ErrMissingQuizService = errors.New("mcp: quiz service is required")

	// ErrMissingIngestionService is returned when the ingestion service is not provided.
	ErrMissingIngestionService = errors.New("mcp: ingestion service is required")
)
