// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - EmbeddingService: Maps transcript chunks and queries to vectors
//   - VectorIndex: Per-scope vector storage and nearest-neighbour search
//   - IngestionTracker: Durable (scope, source) ingestion markers
//   - ConfigStore: Application configuration
//   - PromptStore: Quiz prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationService: Text generation. Without it, ingestion still works but quizzes cannot be generated.
//   - QuizStore: Local quiz archive. Without it, quizzes are returned but not saved.
//   - PipelineMetrics: Pipeline counters. Without it, NopMetrics is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
