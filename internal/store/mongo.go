// ABOUTME: MongoDB implementation of the document store capability
// ABOUTME: $vectorSearch aggregation plus Atlas search index administration
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docteam/ragstack/internal/models"
)

// VectorPath is the stored field holding embedding vectors.
const VectorPath = "embedding"

// Mongo is the production Store backed by a MongoDB collection with an
// Atlas vector search index.
type Mongo struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
	indexName  string
}

var _ Store = (*Mongo)(nil)

// Connect opens a client, verifies connectivity, and binds the knowledge
// base collection.
func Connect(ctx context.Context, uri, dbName, collectionName, indexName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	database := client.Database(dbName)
	return &Mongo{
		client:     client,
		database:   database,
		collection: database.Collection(collectionName),
		indexName:  indexName,
	}, nil
}

// Database exposes the underlying database handle so sibling collections
// (chat history) can be bound from the same connection.
func (m *Mongo) Database() *mongo.Database {
	return m.database
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping verifies store connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return nil
}

// InsertMany bulk-inserts embedded chunks.
func (m *Mongo) InsertMany(ctx context.Context, chunks []models.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	records := make([]any, len(chunks))
	for i, chunk := range chunks {
		records[i] = chunk
	}
	if _, err := m.collection.InsertMany(ctx, records); err != nil {
		return fmt.Errorf("inserting %d chunks: %w", len(chunks), err)
	}
	return nil
}

// DeleteAll removes every document from the collection.
func (m *Mongo) DeleteAll(ctx context.Context) error {
	if _, err := m.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	count, err := m.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// VectorSearch runs a $vectorSearch aggregation and decodes the projected
// results in store order (descending similarity).
func (m *Mongo) VectorSearch(ctx context.Context, params SearchParams) ([]models.SearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	cursor, err := m.collection.Aggregate(ctx, BuildVectorSearchPipeline(m.indexName, params))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.SearchResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decoding vector search results: %w", err)
	}
	return results, nil
}

// BuildVectorSearchPipeline assembles the aggregation pipeline for the
// given parameters. Exported so the stage construction is testable
// without a live store.
func BuildVectorSearchPipeline(indexName string, params SearchParams) mongo.Pipeline {
	search := bson.D{
		{Key: "index", Value: indexName},
		{Key: "queryVector", Value: params.QueryVector},
		{Key: "path", Value: VectorPath},
		{Key: "numCandidates", Value: params.NumCandidates},
		{Key: "limit", Value: params.Limit},
	}
	if len(params.Filter) > 0 {
		search = append(search, bson.E{Key: "filter", Value: bson.M(params.Filter)})
	}

	project := bson.D{{Key: "_id", Value: 0}}
	for _, field := range params.ProjectFields {
		project = append(project, bson.E{Key: field, Value: 1})
	}
	project = append(project, bson.E{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}})

	return mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: search}},
		bson.D{{Key: "$project", Value: project}},
	}
}

// ListSearchIndexes lists the collection's search indexes with status.
func (m *Mongo) ListSearchIndexes(ctx context.Context) ([]IndexStatus, error) {
	cursor, err := m.collection.SearchIndexes().List(ctx, options.SearchIndexes())
	if err != nil {
		return nil, fmt.Errorf("listing search indexes: %w", err)
	}
	defer cursor.Close(ctx)

	var indexes []IndexStatus
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, fmt.Errorf("decoding search index listing: %w", err)
	}
	return indexes, nil
}

// CreateSearchIndex submits a vector search index build. Returning nil
// only means the request was accepted; readiness is polled separately.
func (m *Mongo) CreateSearchIndex(ctx context.Context, def IndexDefinition) error {
	model := mongo.SearchIndexModel{
		Definition: bson.D{{Key: "fields", Value: def.Fields}},
		Options:    options.SearchIndexes().SetName(def.Name).SetType("vectorSearch"),
	}
	if _, err := m.collection.SearchIndexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating search index %q: %w", def.Name, err)
	}
	return nil
}

// DropSearchIndex requests removal of a named search index.
func (m *Mongo) DropSearchIndex(ctx context.Context, name string) error {
	if err := m.collection.SearchIndexes().DropOne(ctx, name); err != nil {
		return fmt.Errorf("dropping search index %q: %w", name, err)
	}
	return nil
}
