// ABOUTME: Document store capability: insert, count, vector search, index admin
// ABOUTME: Consumed through an interface so tests can substitute fakes
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/docteam/ragstack/internal/models"
)

// ErrConnectivity wraps transport and authentication failures talking to
// the store, so callers can classify them with errors.Is.
var ErrConnectivity = errors.New("document store unavailable")

// Search index lifecycle states reported by the store.
const (
	IndexStatusCreating = "CREATING"
	IndexStatusReady    = "READY"
	IndexStatusFailed   = "FAILED"
	IndexStatusDeleting = "DELETING"
)

// IndexField is one entry in a vector index definition: either a vector
// field or a filter field.
type IndexField struct {
	Type          string `bson:"type" json:"type"`
	Path          string `bson:"path" json:"path"`
	NumDimensions int    `bson:"numDimensions,omitempty" json:"numDimensions,omitempty"`
	Similarity    string `bson:"similarity,omitempty" json:"similarity,omitempty"`
}

// IndexDefinition describes a named vector search index.
type IndexDefinition struct {
	Name   string
	Fields []IndexField
}

// NewVectorIndex builds a cosine-similarity vector index definition over
// vectorPath, with any filterPaths declared as filterable fields.
func NewVectorIndex(name, vectorPath string, dimensions int, filterPaths ...string) IndexDefinition {
	fields := []IndexField{{
		Type:          "vector",
		Path:          vectorPath,
		NumDimensions: dimensions,
		Similarity:    "cosine",
	}}
	for _, path := range filterPaths {
		fields = append(fields, IndexField{Type: "filter", Path: path})
	}
	return IndexDefinition{Name: name, Fields: fields}
}

// IndexStatus is one row from ListSearchIndexes.
type IndexStatus struct {
	Name             string         `bson:"name"`
	Status           string         `bson:"status"`
	Queryable        bool           `bson:"queryable"`
	LatestDefinition map[string]any `bson:"latestDefinition"`
}

// SearchParams parameterize an approximate-nearest-neighbor search.
// NumCandidates controls the breadth/accuracy trade-off and must be at
// least Limit. Filter is a structured predicate over metadata fields that
// are declared filterable in the index; it is applied before the limit
// cutoff. ProjectFields selects the fields surfaced on each result.
type SearchParams struct {
	QueryVector   []float64
	NumCandidates int
	Limit         int
	Filter        map[string]any
	ProjectFields []string
}

// Validate rejects parameter combinations before they reach the store.
func (p SearchParams) Validate() error {
	if len(p.QueryVector) == 0 {
		return fmt.Errorf("query vector is required")
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", p.Limit)
	}
	if p.NumCandidates < p.Limit {
		return fmt.Errorf("numCandidates (%d) must be >= limit (%d)", p.NumCandidates, p.Limit)
	}
	return nil
}

// Store is the document store capability consumed by the pipeline. An
// empty search result is a normal outcome, returned as an empty slice.
type Store interface {
	InsertMany(ctx context.Context, chunks []models.EmbeddedChunk) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)

	// VectorSearch returns results ordered descending by similarity score.
	VectorSearch(ctx context.Context, params SearchParams) ([]models.SearchResult, error)

	ListSearchIndexes(ctx context.Context) ([]IndexStatus, error)
	CreateSearchIndex(ctx context.Context, def IndexDefinition) error
	DropSearchIndex(ctx context.Context, name string) error
}
