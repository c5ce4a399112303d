// ABOUTME: Retriever runs query embedding, vector search, and optional reranking
// ABOUTME: Maps rerank scores back onto the original results by index
package rag

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/docteam/ragstack/internal/embeddings"
	"github.com/docteam/ragstack/internal/models"
	"github.com/docteam/ragstack/internal/store"
)

// SearchDefaults hold the retrieval parameters used when a caller does
// not override them per request.
type SearchDefaults struct {
	NumCandidates int
	Limit         int
	RerankTopK    int
	Projection    []string
}

// SearchOptions override retrieval defaults for one Search call. Zero
// values mean "use the default".
type SearchOptions struct {
	Filter        map[string]any
	NumCandidates int
	Limit         int
}

// RerankOptions override retrieval defaults for one SearchWithRerank
// call. InitialLimit is the vector-search result count fed to the
// reranker; TopK is how many reranked results come back.
type RerankOptions struct {
	Filter        map[string]any
	NumCandidates int
	InitialLimit  int
	TopK          int
}

// Retriever turns a text query into ranked search results. The query is
// embedded in query mode, searched against the store, and optionally
// passed through a reranking model for a second scoring pass.
type Retriever struct {
	store    store.Store
	embedder embeddings.Client
	defaults SearchDefaults
}

// NewRetriever creates a Retriever with the given default parameters.
func NewRetriever(st store.Store, embedder embeddings.Client, defaults SearchDefaults) *Retriever {
	return &Retriever{store: st, embedder: embedder, defaults: defaults}
}

// Search embeds the query and returns vector-search results ordered
// descending by similarity score. An empty result set is normal.
func (r *Retriever) Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = r.defaults.Limit
	}
	candidates := opts.NumCandidates
	if candidates <= 0 {
		candidates = r.defaults.NumCandidates
	}
	return r.search(ctx, query, opts.Filter, candidates, limit)
}

// SearchWithRerank runs Search and then reranks the results, returning
// at most TopK of them ordered descending by rerank score. Each result
// keeps its original similarity score alongside the rerank score.
func (r *Retriever) SearchWithRerank(ctx context.Context, query string, opts RerankOptions) ([]models.SearchResult, error) {
	limit := opts.InitialLimit
	if limit <= 0 {
		limit = r.defaults.Limit
	}
	candidates := opts.NumCandidates
	if candidates <= 0 {
		candidates = r.defaults.NumCandidates
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = r.defaults.RerankTopK
	}

	results, err := r.search(ctx, query, opts.Filter, candidates, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	bodies := make([]string, len(results))
	for i, res := range results {
		bodies[i] = res.Body
	}
	ranked, err := r.embedder.Rerank(ctx, query, bodies, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrRerankService, err)
	}

	out := make([]models.SearchResult, 0, len(ranked))
	for _, rr := range ranked {
		if rr.Index < 0 || rr.Index >= len(results) {
			return nil, fmt.Errorf("%w: result index %d out of range for %d candidates",
				embeddings.ErrRerankService, rr.Index, len(results))
		}
		res := results[rr.Index]
		score := rr.RelevanceScore
		res.RerankScore = &score
		out = append(out, res)
	}
	return out, nil
}

func (r *Retriever) search(ctx context.Context, query string, filter map[string]any, candidates, limit int) ([]models.SearchResult, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbeddingService, err)
	}

	params := store.SearchParams{
		QueryVector:   vector,
		NumCandidates: candidates,
		Limit:         limit,
		Filter:        filter,
		ProjectFields: r.defaults.Projection,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	results, err := r.store.VectorSearch(ctx, params)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"results": len(results), "limit": limit}).Debug("vector search complete")
	return results, nil
}
