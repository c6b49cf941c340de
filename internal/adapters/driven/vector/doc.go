// Package vector holds similarity helpers shared by the VectorIndex adapters.
// Backends live in sub-packages: qdrant (REST) and pgvector (PostgreSQL).
package vector
