package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// Retriever fetches the transcript text most relevant to a query.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds query, searches the scope and joins the text payloads of
// the hits with single spaces, most similar first.
//
// An existing scope with no matching records yields "" and no error. Callers
// must treat "" as insufficient content. A scope that was never created
// yields domain.ErrScopeNotFound.
func (r *Retriever) Retrieve(ctx context.Context, scopeID, query string, topK int) (string, error) {
	if r.embedder == nil {
		return "", domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return "", domain.ErrVectorIndexUnavailable
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	logger.Debug("Retrieving top %d from %s for %q", topK, scopeID, query)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", embeddingErr(err))
	}

	hits, err := r.index.Search(ctx, scopeID, vector, topK)
	if err != nil {
		return "", vectorStoreErr("search", err)
	}
	logger.Debug("Retrieved %d hits", len(hits))

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		logger.Debug("  %s#%d score=%.4f", hit.Payload.SourceID, hit.Payload.SequenceIndex, hit.Score)
		texts = append(texts, hit.Payload.Text)
	}
	return strings.Join(texts, " "), nil
}
