// ABOUTME: App wires configuration into the pipeline's components
// ABOUTME: Exposes the operations the CLI and HTTP server are built on
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/docteam/ragstack/internal/chunker"
	"github.com/docteam/ragstack/internal/config"
	"github.com/docteam/ragstack/internal/embeddings"
	"github.com/docteam/ragstack/internal/index"
	"github.com/docteam/ragstack/internal/ingest"
	"github.com/docteam/ragstack/internal/llm"
	"github.com/docteam/ragstack/internal/memory"
	"github.com/docteam/ragstack/internal/models"
	"github.com/docteam/ragstack/internal/rag"
	"github.com/docteam/ragstack/internal/store"
)

// App is the assembled pipeline. Both entry points (CLI and HTTP server)
// operate exclusively through its methods.
type App struct {
	cfg       *config.Config
	store     store.Store
	embedder  embeddings.Client
	completer llm.Completer
	memory    memory.Memory

	retriever *rag.Retriever
	generator *rag.Generator

	mongoStore *store.Mongo
}

// New builds the production wiring: MongoDB store and chat memory, the
// Cohere embedding client, and the completion proxy client.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	mongoStore, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.CollectionName, cfg.VectorIndexName)
	if err != nil {
		return nil, err
	}

	mem := memory.NewMongo(mongoStore.Database().Collection(cfg.HistoryCollection))
	if err := mem.EnsureSessionIndex(ctx); err != nil {
		log.WithError(err).Warn("could not ensure chat history session index")
	}

	embedder, err := embeddings.NewCohereClient(cfg.CohereAPIKey, cfg.EmbeddingModel, cfg.RerankModel, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}
	completer := llm.NewProxyClient(cfg.CompletionEndpoint, cfg.CompletionPasskey, cfg.CompletionTimeout)

	a := NewFromComponents(cfg, mongoStore, embedder, completer, mem)
	a.mongoStore = mongoStore
	return a, nil
}

// NewFromComponents assembles an App from pre-built components. Tests
// use it to substitute fakes; memory may be nil.
func NewFromComponents(cfg *config.Config, st store.Store, embedder embeddings.Client, completer llm.Completer, mem memory.Memory) *App {
	retriever := rag.NewRetriever(st, embedder, rag.SearchDefaults{
		NumCandidates: cfg.NumCandidates,
		Limit:         cfg.SearchLimit,
		RerankTopK:    cfg.RerankTopK,
		Projection:    []string{"body", "metadata.productName", "metadata.contentType", "updated"},
	})
	return &App{
		cfg:       cfg,
		store:     st,
		embedder:  embedder,
		completer: completer,
		memory:    mem,
		retriever: retriever,
		generator: rag.NewGenerator(retriever, completer, mem),
	}
}

// Close releases the store connection when the production wiring built it.
func (a *App) Close(ctx context.Context) error {
	if a.mongoStore == nil {
		return nil
	}
	return a.mongoStore.Close(ctx)
}

// Query answers a question over the stored knowledge base. sessionID may
// be empty for a stateless question.
func (a *App) Query(ctx context.Context, query, sessionID string, useRerank bool, filter map[string]any) (string, error) {
	return a.generator.Generate(ctx, query, sessionID, useRerank, filter)
}

// Search returns raw retrieval results without completion.
func (a *App) Search(ctx context.Context, query string, limit int, useRerank bool, filter map[string]any) ([]models.SearchResult, error) {
	if useRerank {
		return a.retriever.SearchWithRerank(ctx, query, rag.RerankOptions{Filter: filter, TopK: limit})
	}
	return a.retriever.Search(ctx, query, rag.SearchOptions{Filter: filter, Limit: limit})
}

// GetHistory returns a session's messages oldest-first.
func (a *App) GetHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if a.memory == nil {
		return nil, nil
	}
	return a.memory.History(ctx, sessionID)
}

// ClearHistory deletes a session's messages. Unknown sessions are a no-op.
func (a *App) ClearHistory(ctx context.Context, sessionID string) error {
	if a.memory == nil {
		return nil
	}
	return a.memory.Clear(ctx, sessionID)
}

// Ingest chunks and embeds the documents, replaces the collection's
// contents with the result, and returns the number of stored chunks.
func (a *App) Ingest(ctx context.Context, docs []models.Document) (int, error) {
	processor := ingest.NewProcessor(
		chunker.New(a.cfg.ChunkSize, a.cfg.ChunkOverlap, a.cfg.Separators),
		a.embedder,
		a.cfg.IngestWorkers,
	)
	if a.cfg.EmbedRPS > 0 {
		processor.Limiter = rate.NewLimiter(rate.Limit(a.cfg.EmbedRPS), 1)
	}

	chunks, err := processor.Process(ctx, docs)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"documents": len(docs), "chunks": len(chunks)}).Info("embedding complete")

	if err := a.store.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("clearing collection: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := a.store.InsertMany(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}
	return len(chunks), nil
}

// EnsureVectorIndex drops and recreates the vector search index, then
// waits for it to become queryable. A false result without an error
// means the build did not reach READY within the polling bound.
func (a *App) EnsureVectorIndex(ctx context.Context, filterPaths ...string) (bool, error) {
	mgr := index.NewManager(a.store, a.cfg.IndexPollAttempts, a.cfg.IndexPollInterval)
	def := store.NewVectorIndex(a.cfg.VectorIndexName, store.VectorPath, a.cfg.EmbeddingDimensions, filterPaths...)
	return mgr.EnsureIndex(ctx, def)
}

// Stats reports the deployment's effective settings and document count.
type Stats struct {
	DocumentCount       int64  `json:"document_count"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	RerankModel         string `json:"rerank_model"`
	ChunkSize           int    `json:"chunk_size"`
	Database            string `json:"database"`
	Collection          string `json:"collection"`
}

// Stats returns the current deployment statistics.
func (a *App) Stats(ctx context.Context) (Stats, error) {
	count, err := a.store.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		DocumentCount:       count,
		EmbeddingModel:      a.cfg.EmbeddingModel,
		EmbeddingDimensions: a.cfg.EmbeddingDimensions,
		RerankModel:         a.cfg.RerankModel,
		ChunkSize:           a.cfg.ChunkSize,
		Database:            a.cfg.DBName,
		Collection:          a.cfg.CollectionName,
	}, nil
}
