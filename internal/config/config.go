// ABOUTME: Centralized configuration for the RAG pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the pipeline. It is resolved once at
// startup and read-only afterwards.
type Config struct {
	// MongoDB settings
	MongoURI          string
	DBName            string
	CollectionName    string
	HistoryCollection string
	VectorIndexName   string

	// Embedding / rerank settings
	CohereAPIKey        string
	EmbeddingModel      string
	EmbeddingDimensions int
	RerankModel         string

	// Chunking settings
	ChunkSize    int
	ChunkOverlap int
	Separators   []string

	// Vector search settings
	NumCandidates int
	SearchLimit   int
	RerankTopK    int

	// Completion service settings
	CompletionEndpoint string
	CompletionPasskey  string
	CompletionTimeout  time.Duration

	// Index build polling
	IndexPollAttempts int
	IndexPollInterval time.Duration

	// Ingestion settings
	IngestWorkers int
	EmbedRPS      float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:          os.Getenv("MONGODB_URI"),
		DBName:            getEnv("RAG_DB_NAME", "ragstack"),
		CollectionName:    getEnv("RAG_COLLECTION", "knowledge_base"),
		HistoryCollection: getEnv("RAG_HISTORY_COLLECTION", "chat_history"),
		VectorIndexName:   getEnv("RAG_VECTOR_INDEX", "vector_index"),

		CohereAPIKey:        os.Getenv("COHERE_API_KEY"),
		EmbeddingModel:      getEnv("RAG_EMBEDDING_MODEL", "embed-english-v3.0"),
		EmbeddingDimensions: getEnvInt("RAG_EMBEDDING_DIMENSIONS", 1024),
		RerankModel:         getEnv("RAG_RERANK_MODEL", "rerank-v3.5"),

		ChunkSize:    getEnvInt("RAG_CHUNK_SIZE", 200),
		ChunkOverlap: getEnvInt("RAG_CHUNK_OVERLAP", 0),
		Separators:   getEnvList("RAG_SEPARATORS", []string{"\n\n", "\n", " ", ""}),

		NumCandidates: getEnvInt("RAG_NUM_CANDIDATES", 150),
		SearchLimit:   getEnvInt("RAG_SEARCH_LIMIT", 5),
		RerankTopK:    getEnvInt("RAG_RERANK_TOP_K", 5),

		CompletionEndpoint: os.Getenv("COMPLETION_ENDPOINT"),
		CompletionPasskey:  os.Getenv("COMPLETION_PASSKEY"),
		CompletionTimeout:  getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),

		IndexPollAttempts: getEnvInt("RAG_INDEX_POLL_ATTEMPTS", 60),
		IndexPollInterval: getEnvDuration("RAG_INDEX_POLL_INTERVAL", 2*time.Second),

		IngestWorkers: getEnvInt("RAG_INGEST_WORKERS", 4),
		EmbedRPS:      getEnvFloat("RAG_EMBED_RPS", 0),
	}

	return cfg, cfg.Validate()
}

// Validate reports fatal configuration errors. A failing Validate must
// prevent service start.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI environment variable is required")
	}
	if c.CohereAPIKey == "" {
		return fmt.Errorf("COHERE_API_KEY environment variable is required")
	}
	if c.CompletionEndpoint == "" {
		return fmt.Errorf("COMPLETION_ENDPOINT environment variable is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("RAG_EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("RAG_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("RAG_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.NumCandidates < c.SearchLimit {
		return fmt.Errorf("RAG_NUM_CANDIDATES (%d) must be >= RAG_SEARCH_LIMIT (%d)", c.NumCandidates, c.SearchLimit)
	}
	if c.IndexPollAttempts <= 0 {
		return fmt.Errorf("RAG_INDEX_POLL_ATTEMPTS must be positive, got %d", c.IndexPollAttempts)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList parses a comma-separated list. The escapes \n and \t are
// recognized so boundary separators can be expressed in an env var.
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.ReplaceAll(p, `\n`, "\n")
		p = strings.ReplaceAll(p, `\t`, "\t")
		out[i] = p
	}
	return out
}
