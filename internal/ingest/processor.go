// ABOUTME: Data processor turning raw documents into embedded chunk records
// ABOUTME: Chunks each document and embeds its chunks as one contextualized batch
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/docteam/ragstack/internal/chunker"
	"github.com/docteam/ragstack/internal/embeddings"
	"github.com/docteam/ragstack/internal/models"
)

// Processor chunks and embeds documents for ingestion. Documents are
// processed concurrently, but all chunks of one document go to the
// embedding service in a single call so the batch stays contextualized.
type Processor struct {
	splitter *chunker.Splitter
	embedder embeddings.Client
	workers  int

	// Limiter optionally bounds embedding request rate during bulk
	// ingestion. Nil means unlimited.
	Limiter *rate.Limiter
}

// NewProcessor creates a Processor running at most workers embedding
// batches concurrently.
func NewProcessor(splitter *chunker.Splitter, embedder embeddings.Client, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{splitter: splitter, embedder: embedder, workers: workers}
}

// Process returns one EmbeddedChunk per produced chunk, concatenated in
// input-document order with chunk order preserved within each document.
// A failure is attributed to the document that caused it.
func (p *Processor) Process(ctx context.Context, docs []models.Document) ([]models.EmbeddedChunk, error) {
	perDoc := make([][]models.EmbeddedChunk, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			chunks, err := p.processOne(ctx, doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			perDoc[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.EmbeddedChunk
	for _, chunks := range perDoc {
		out = append(out, chunks...)
	}
	return out, nil
}

func (p *Processor) processOne(ctx context.Context, doc models.Document) ([]models.EmbeddedChunk, error) {
	texts := p.splitter.Split(doc.Body)
	if len(texts) == 0 {
		return nil, nil
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]models.EmbeddedChunk, len(texts))
	for j, text := range texts {
		chunks[j] = models.EmbeddedChunk{
			Document:  doc.WithBody(text),
			Embedding: vectors[j],
		}
	}
	return chunks, nil
}

// LoadJSON reads an array of documents from a JSON file.
func LoadJSON(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return docs, nil
}
