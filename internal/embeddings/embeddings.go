// ABOUTME: Capability interface for the remote embedding and rerank services
// ABOUTME: Document-mode and query-mode embeddings plus relevance reranking
package embeddings

import (
	"context"
	"errors"
)

// Service failures are surfaced to the caller unretried; wrap these
// sentinels so callers can classify with errors.Is.
var (
	ErrEmbeddingService = errors.New("embedding service failure")
	ErrRerankService    = errors.New("rerank service failure")
)

// RerankResult maps a reranked candidate back to its position in the
// slice passed to Rerank.
type RerankResult struct {
	Index          int
	RelevanceScore float64
}

// Client is the capability surface over the remote embedding and rerank
// models. Implementations must preserve input order and must never drop
// inputs without reporting an index mapping.
type Client interface {
	// EmbedDocuments returns one vector per input text, order-preserving.
	// Texts in one call are embedded as a contextualized batch, so all
	// chunks of a logical unit should be batched together.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery returns a single query-mode embedding vector.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Rerank scores documents against the query and returns at most topK
	// results sorted descending by relevance score.
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error)
}
