// Package qdrant provides a VectorIndex adapter for the Qdrant REST API.
//
// Each scope maps to one Qdrant collection with cosine distance. Point ids
// are the deterministic 63-bit chunk ids, so re-ingesting a source overwrites
// its points instead of duplicating them.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Qdrant client.
type Config struct {
	// URL is the Qdrant HTTP endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// VectorIndex stores scopes as Qdrant collections.
type VectorIndex struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewVectorIndex creates a new Qdrant vector index client.
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// vectorParams is the collection vector configuration.
type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

// collectionInfo is the GET /collections/{name} result.
type collectionInfo struct {
	Config struct {
		Params struct {
			Vectors vectorParams `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// point is a Qdrant point with payload.
type point struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload domain.Payload `json:"payload"`
}

// scoredPoint is a search result entry.
type scoredPoint struct {
	ID      uint64         `json:"id"`
	Score   float64        `json:"score"`
	Payload domain.Payload `json:"payload"`
}

// response wraps every Qdrant reply.
type response[T any] struct {
	Result T       `json:"result"`
	Status any     `json:"status"`
	Time   float64 `json:"time"`
}

// EnsureScope creates the collection if absent.
// An existing collection with a different vector size is an error.
func (v *VectorIndex) EnsureScope(ctx context.Context, scopeID string, cfg domain.ScopeConfig) error {
	if cfg.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}

	var info response[collectionInfo]
	status, err := v.do(ctx, http.MethodGet, v.collectionPath(scopeID), nil, &info)
	switch {
	case err == nil:
		if size := info.Result.Config.Params.Vectors.Size; size != cfg.Dimension {
			return fmt.Errorf("%w: %w: collection %s has dimension %d, not %d",
				domain.ErrVectorStore, domain.ErrDimensionMismatch, scopeID, size, cfg.Dimension)
		}
		return nil
	case status != http.StatusNotFound:
		return fmt.Errorf("%w: get collection %s: %w", domain.ErrVectorStore, scopeID, err)
	}

	body := map[string]any{
		"vectors": vectorParams{Size: cfg.Dimension, Distance: "Cosine"},
	}
	status, err = v.do(ctx, http.MethodPut, v.collectionPath(scopeID), body, nil)
	if err != nil && status != http.StatusConflict {
		return fmt.Errorf("%w: create collection %s: %w", domain.ErrVectorStore, scopeID, err)
	}
	return nil
}

// Upsert writes points and waits for the write to be applied.
func (v *VectorIndex) Upsert(ctx context.Context, scopeID string, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{ID: r.ID, Vector: r.Vector, Payload: r.Payload}
	}

	status, err := v.do(ctx, http.MethodPut, v.collectionPath(scopeID)+"/points?wait=true",
		map[string]any{"points": points}, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
		}
		return fmt.Errorf("%w: upsert into %s: %w", domain.ErrVectorStore, scopeID, err)
	}
	return nil
}

// Search returns the topK nearest points with their payloads.
func (v *VectorIndex) Search(ctx context.Context, scopeID string, query []float32, topK int) ([]driven.VectorHit, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        topK,
		"with_payload": true,
	}

	var resp response[[]scoredPoint]
	status, err := v.do(ctx, http.MethodPost, v.collectionPath(scopeID)+"/points/search", body, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
		}
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrVectorStore, scopeID, err)
	}

	hits := make([]driven.VectorHit, len(resp.Result))
	for i, p := range resp.Result {
		hits[i] = driven.VectorHit{ID: p.ID, Payload: p.Payload, Score: p.Score}
	}
	return hits, nil
}

// TrimSource deletes the points of sourceID at sequence index keep or higher
// with a payload filter.
func (v *VectorIndex) TrimSource(ctx context.Context, scopeID, sourceID string, keep int) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{"key": "source_id", "match": map[string]any{"value": sourceID}},
				map[string]any{"key": "sequence_index", "range": map[string]any{"gte": keep}},
			},
		},
	}
	status, err := v.do(ctx, http.MethodPost, v.collectionPath(scopeID)+"/points/delete?wait=true", body, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
		}
		return fmt.Errorf("%w: trim %s in %s: %w", domain.ErrVectorStore, sourceID, scopeID, err)
	}
	return nil
}

// Count returns the exact number of points in a collection.
func (v *VectorIndex) Count(ctx context.Context, scopeID string) (int, error) {
	var resp response[struct {
		Count int `json:"count"`
	}]
	status, err := v.do(ctx, http.MethodPost, v.collectionPath(scopeID)+"/points/count",
		map[string]any{"exact": true}, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return 0, fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
		}
		return 0, fmt.Errorf("%w: count %s: %w", domain.ErrVectorStore, scopeID, err)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

func (v *VectorIndex) collectionPath(scopeID string) string {
	return "/collections/" + url.PathEscape(scopeID)
}

// do sends a JSON request and decodes a JSON reply into out when non-nil.
// The HTTP status is returned alongside any error so callers can map 404s.
func (v *VectorIndex) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.apiKey != "" {
		req.Header.Set("api-key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant error (status %d): failed to read response", resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
