// ABOUTME: SearchResult is the projection of a stored chunk returned by vector search
// ABOUTME: Carries the similarity score and, after reranking, a separate rerank score
package models

// SearchResult projects a stored chunk into the fields callers see: the
// text, selected metadata, and a relevance score. Score is the store's
// vector-search similarity (higher is better). RerankScore is set only
// after a rerank pass; the two scores are not numerically comparable.
type SearchResult struct {
	Body        string         `bson:"body" json:"body"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Score       float64        `bson:"score" json:"score"`
	RerankScore *float64       `bson:"rerank_score,omitempty" json:"rerank_score,omitempty"`
}
