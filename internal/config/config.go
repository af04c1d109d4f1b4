package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	CorpusPath     string
	ExpansionsPath string
	MediaPath      string

	SearchTopK           int
	SearchScoreThreshold float64
	SearchMode           string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	QdrantURL        string
	QdrantCollection string

	PostgresDSN string

	NATSURL            string
	NATSReindexSubject string

	IndexBatchSize        int
	IndexBatchesPerSecond float64
	IndexerMetricsPort    string
	HistoryLimit          int
}

// Load reads configuration from the environment with working local
// defaults. A .env file in the working directory is merged in first when
// present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		CorpusPath:     mustEnv("CORPUS_PATH", "./data/corpus.json"),
		ExpansionsPath: mustEnv("EXPANSIONS_PATH", ""),
		MediaPath:      mustEnv("MEDIA_PATH", "./data/media"),

		SearchTopK:           mustEnvInt("SEARCH_TOP_K", 3),
		SearchScoreThreshold: mustEnvFloat("SEARCH_SCORE_THRESHOLD", 0.3),
		SearchMode:           mustEnv("SEARCH_MODE", "hybrid"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: mustEnv("QDRANT_COLLECTION", "chem_documents"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:            mustEnv("NATS_URL", ""),
		NATSReindexSubject: mustEnv("NATS_REINDEX_SUBJECT", "corpus.reindex"),

		IndexBatchSize:        mustEnvInt("INDEX_BATCH_SIZE", 32),
		IndexBatchesPerSecond: mustEnvFloat("INDEX_BATCHES_PER_SECOND", 4),
		IndexerMetricsPort:    mustEnv("INDEXER_METRICS_PORT", "9090"),
		HistoryLimit:          mustEnvInt("CHAT_HISTORY_LIMIT", 20),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
