// ABOUTME: Cohere-backed implementation of the embedding and rerank capability
// ABOUTME: Uses input_type search_document / search_query and the v2 rerank endpoint
package embeddings

import (
	"context"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereClient implements Client against the Cohere API.
type CohereClient struct {
	client         *cohereclient.Client
	embeddingModel string
	rerankModel    string
	dimensions     int
}

var _ Client = (*CohereClient)(nil)

// NewCohereClient creates a Cohere-backed embedding client. dimensions is
// the expected vector length; responses with a different length are
// rejected rather than stored.
func NewCohereClient(apiKey, embeddingModel, rerankModel string, dimensions int) (*CohereClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("cohere API key is required")
	}
	return &CohereClient{
		client:         cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		embeddingModel: embeddingModel,
		rerankModel:    rerankModel,
		dimensions:     dimensions,
	}, nil
}

// EmbedDocuments embeds a batch of chunk texts in document mode.
func (c *CohereClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	return c.embed(ctx, texts, cohere.EmbedInputTypeSearchDocument)
}

// EmbedQuery embeds a single query text in query mode.
func (c *CohereClient) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *CohereClient) embed(ctx context.Context, texts []string, inputType cohere.EmbedInputType) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.embeddingModel,
		InputType:      inputType,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}
	if resp.Embeddings == nil || len(resp.Embeddings.Float) != len(texts) {
		got := 0
		if resp.Embeddings != nil {
			got = len(resp.Embeddings.Float)
		}
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingService, got, len(texts))
	}
	vectors := resp.Embeddings.Float
	for i, vector := range vectors {
		if c.dimensions > 0 && len(vector) != c.dimensions {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d", ErrEmbeddingService, i, len(vector), c.dimensions)
		}
	}
	return vectors, nil
}

// Rerank scores documents against the query using the rerank model.
func (c *CohereClient) Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error) {
	if topK <= 0 || topK > len(documents) {
		topK = len(documents)
	}
	resp, err := c.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     c.rerankModel,
		Query:     query,
		Documents: documents,
		TopN:      &topK,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerankService, err)
	}
	results := make([]RerankResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, RerankResult{
			Index:          r.Index,
			RelevanceScore: r.RelevanceScore,
		})
	}
	return results, nil
}
