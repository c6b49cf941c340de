package domain

import (
	"crypto/sha256"
	"encoding/binary"
)

// Payload is the data stored alongside a vector and returned by search.
type Payload struct {
	Text          string `json:"text"`
	ScopeID       string `json:"scope_id"`
	SourceID      string `json:"source_id"`
	SequenceIndex int    `json:"sequence_index"`
}

// EmbeddingRecord is a vector stored under a deterministic point id.
type EmbeddingRecord struct {
	// ID is derived from (ScopeID, SourceID, SequenceIndex) via PointID.
	ID uint64

	// ScopeID is the collection the record lives in.
	ScopeID string

	// Vector is the embedding. Its length must match the scope dimension.
	Vector []float32

	// Payload is returned verbatim by search.
	Payload Payload
}

// NewEmbeddingRecord builds the record for an embedded chunk.
func NewEmbeddingRecord(chunk TranscriptChunk, vector []float32) EmbeddingRecord {
	return EmbeddingRecord{
		ID:      PointID(chunk.ScopeID, chunk.SourceID, chunk.SequenceIndex),
		ScopeID: chunk.ScopeID,
		Vector:  vector,
		Payload: Payload{
			Text:          chunk.Text,
			ScopeID:       chunk.ScopeID,
			SourceID:      chunk.SourceID,
			SequenceIndex: chunk.SequenceIndex,
		},
	}
}

// PointID returns the storage id for a chunk.
//
// The id is the first 8 bytes (big-endian) of SHA-256 over
// u64(len(scopeID)) || scopeID || u64(len(sourceID)) || sourceID || u64(index),
// with all integers big-endian, masked to 63 bits. The length prefixes make
// the encoding injective, so distinct inputs only collide through SHA-256.
func PointID(scopeID, sourceID string, index int) uint64 {
	h := sha256.New()
	var n [8]byte

	binary.BigEndian.PutUint64(n[:], uint64(len(scopeID)))
	h.Write(n[:])
	h.Write([]byte(scopeID))

	binary.BigEndian.PutUint64(n[:], uint64(len(sourceID)))
	h.Write(n[:])
	h.Write([]byte(sourceID))

	binary.BigEndian.PutUint64(n[:], uint64(index))
	h.Write(n[:])

	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63)
}
