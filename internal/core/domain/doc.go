// Package domain defines the core business entities for quizrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TranscriptChunk: A fixed-size window of lecture transcript text
//   - EmbeddingRecord: A vector plus payload stored under a deterministic point id
//   - IngestionMarker: The idempotency fact for a (scope, source) pair
//   - QuizQuestion / QuizDocument: The structured output of a generation run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
