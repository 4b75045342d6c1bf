package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RetrievalParams holds the tunable constants of the RAG pipeline. They are
// injected into the engine so tests can exercise the pipeline with known
// values instead of recompiling logic.
type RetrievalParams struct {
	// TopK is the candidate count requested from the vector store. It is
	// larger than MaxContextItems to leave room for post-filtering.
	TopK int
	// MinSimilarity is the score below which candidates are dropped.
	MinSimilarity float64
	// MaxContextItems caps how many chunks reach the generator.
	MaxContextItems int
	// MaxContextChars bounds the assembled context text.
	MaxContextChars int
	// UngroundedConfidence is the fixed confidence for answers generated
	// without any retrieved context.
	UngroundedConfidence float64
	// ConfidenceCap is the ceiling for grounded confidence scores.
	ConfidenceCap float64
}

// DefaultRetrievalParams returns the production defaults.
func DefaultRetrievalParams() RetrievalParams {
	return RetrievalParams{
		TopK:                 10,
		MinSimilarity:        0.6,
		MaxContextItems:      8,
		MaxContextChars:      6000,
		UngroundedConfidence: 0.3,
		ConfidenceCap:        0.95,
	}
}

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL       string
	LLMModel         string
	LLMAPIKey        string
	EmbeddingBaseURL string
	EmbeddingModel   string

	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	DBPath  string
	APIPort string

	LogLevel  slog.Level
	LogFormat string

	// Per-stage timeouts for external calls.
	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration

	// MaxOutboundCalls bounds concurrent requests to the LLM and
	// embedding services across all in-flight questions.
	MaxOutboundCalls int64

	Retrieval RetrievalParams
}

// Load reads configuration from environment variables and returns a Config.
// If a .env file exists in the current directory or an ancestor, it is
// loaded first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4.1-mini"),
		LLMAPIKey:        getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "proposal_knowledge"),
		DBPath:           getEnv("DB_PATH", "./data/proposal-ai.db"),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	// The vector size must match the embedding model's output dimension.
	// The Qdrant collection has to be recreated if it changes.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	cfg.EmbedTimeout, err = getEnvDuration("EMBED_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SearchTimeout, err = getEnvDuration("SEARCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.GenerateTimeout, err = getEnvDuration("GENERATE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	maxCalls, err := getEnvInt("MAX_OUTBOUND_CALLS", 8)
	if err != nil {
		return nil, err
	}
	if maxCalls <= 0 {
		return nil, fmt.Errorf("MAX_OUTBOUND_CALLS must be greater than 0")
	}
	cfg.MaxOutboundCalls = int64(maxCalls)

	cfg.Retrieval, err = loadRetrievalParams()
	if err != nil {
		return nil, err
	}

	// Create the data directory for the SQLite file if needed.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv tries the current directory, then walks up a few levels looking
// for a .env file next to the project root.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func loadRetrievalParams() (RetrievalParams, error) {
	defaults := DefaultRetrievalParams()
	p := RetrievalParams{}
	var err error

	if p.TopK, err = getEnvInt("RETRIEVAL_TOP_K", defaults.TopK); err != nil {
		return p, err
	}
	if p.TopK <= 0 {
		return p, fmt.Errorf("RETRIEVAL_TOP_K must be greater than 0")
	}
	if p.MinSimilarity, err = getEnvFloat("RETRIEVAL_MIN_SIMILARITY", defaults.MinSimilarity); err != nil {
		return p, err
	}
	if p.MaxContextItems, err = getEnvInt("RETRIEVAL_MAX_CONTEXT_ITEMS", defaults.MaxContextItems); err != nil {
		return p, err
	}
	if p.MaxContextChars, err = getEnvInt("RETRIEVAL_MAX_CONTEXT_CHARS", defaults.MaxContextChars); err != nil {
		return p, err
	}
	if p.UngroundedConfidence, err = getEnvFloat("RETRIEVAL_UNGROUNDED_CONFIDENCE", defaults.UngroundedConfidence); err != nil {
		return p, err
	}
	if p.ConfidenceCap, err = getEnvFloat("RETRIEVAL_CONFIDENCE_CAP", defaults.ConfidenceCap); err != nil {
		return p, err
	}
	if p.UngroundedConfidence < 0 || p.UngroundedConfidence > p.ConfidenceCap {
		return p, fmt.Errorf("RETRIEVAL_UNGROUNDED_CONFIDENCE must be in [0, confidence cap]")
	}
	if p.ConfidenceCap > 1.0 {
		return p, fmt.Errorf("RETRIEVAL_CONFIDENCE_CAP must not exceed 1.0")
	}
	return p, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
