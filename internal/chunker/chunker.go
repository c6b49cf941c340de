// Package chunker splits transcript text into fixed-size windows.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// Chunker splits transcript text into contiguous, non-overlapping chunks of
// at most chunkSize characters. Boundaries ignore sentences and paragraphs.
type Chunker struct {
	chunkSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{chunkSize: domain.DefaultChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Chunk splits text into chunks in source order.
// Sizes are counted in characters (runes), never splitting a multi-byte
// character. Concatenating the chunk texts yields text. Empty input yields nil.
func (c *Chunker) Chunk(scopeID, sourceID, text string) []domain.TranscriptChunk {
	if text == "" {
		return nil
	}

	n := utf8.RuneCountInString(text)
	chunks := make([]domain.TranscriptChunk, 0, (n+c.chunkSize-1)/c.chunkSize)

	start, runes := 0, 0
	for i := range text {
		if runes == c.chunkSize {
			chunks = append(chunks, c.newChunk(scopeID, sourceID, len(chunks), text[start:i]))
			start, runes = i, 0
		}
		runes++
	}
	chunks = append(chunks, c.newChunk(scopeID, sourceID, len(chunks), text[start:]))

	return chunks
}

func (c *Chunker) newChunk(scopeID, sourceID string, index int, text string) domain.TranscriptChunk {
	return domain.TranscriptChunk{
		ScopeID:       scopeID,
		SourceID:      sourceID,
		SequenceIndex: index,
		Text:          text,
	}
}
