package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrEmbedding indicates the embedding step failed for a source.
	// The source is skipped; other sources in the batch continue.
	ErrEmbedding = errors.New("embedding failed")

	// ErrVectorStore indicates scope creation, upsert or search failed.
	ErrVectorStore = errors.New("vector store failure")

	// ErrScopeNotFound indicates a search against a scope that was never created.
	// An existing but empty scope is not an error.
	ErrScopeNotFound = errors.New("scope not found")

	// ErrDimensionMismatch indicates a vector does not match the scope's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInsufficientContent indicates retrieval produced no usable text.
	// This is an expected outcome, reported as a structured error result.
	ErrInsufficientContent = errors.New("no relevant content found")

	// ErrGeneration indicates the generation service returned no usable output or timed out.
	ErrGeneration = errors.New("generation failed")

	// ErrNoCandidates indicates the generation service returned no candidate output.
	ErrNoCandidates = fmt.Errorf("%w: no candidate output", ErrGeneration)

	// Service availability.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// StepError tags a failure with the pipeline step that produced it.
// Errors committed by earlier steps are not rolled back.
type StepError struct {
	Step PipelineState
	Err  error
}

// NewStepError wraps err with the step that failed.
func NewStepError(step PipelineState, err error) *StepError {
	return &StepError{Step: step, Err: err}
}

// Error returns "<step>: <cause>".
func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Step.String()
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}
