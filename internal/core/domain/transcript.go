package domain

// DefaultChunkSize is the maximum number of characters per transcript chunk.
const DefaultChunkSize = 512

// TranscriptChunk is a contiguous window of transcript text.
// Chunks are immutable once created.
type TranscriptChunk struct {
	// ScopeID is the course or lecture scope the chunk belongs to.
	ScopeID string

	// SourceID identifies the transcript the chunk was cut from.
	SourceID string

	// SequenceIndex is the ordinal position within the source.
	SequenceIndex int

	// Text is at most the configured chunk size in characters.
	Text string
}

// Source is a transcript handed to ingestion.
type Source struct {
	// ID identifies the transcript, typically the lecture id.
	ID string

	// Text is the plain UTF-8 transcript.
	Text string
}
