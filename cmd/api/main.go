package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"proposal-ai/internal/config"
	"proposal-ai/internal/extract"
	"proposal-ai/internal/handlers"
	"proposal-ai/internal/http"
	"proposal-ai/internal/indexer"
	"proposal-ai/internal/llm"
	"proposal-ai/internal/rag"
	"proposal-ai/internal/storage"
	"proposal-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers RFP questions from an organization's indexed knowledge
// base using retrieval-augmented generation, and extracts answerable
// questions from uploaded RFP documents.
//
// swagger:meta

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	answerRepo := storage.NewAnswerRepo(db)
	questionRepo := storage.NewQuestionRepo(db)
	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// External services are probed, not required: a missing backend puts
	// the engine into its degraded mode instead of refusing to start.
	avail := rag.ServiceAvailability{
		Embeddings: true,
		LLM:        true,
	}

	limiter := llm.NewLimiter(cfg.MaxOutboundCalls)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, limiter)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize, limiter)

	var store vectorstore.VectorStore
	var prober handlers.CollectionProber
	qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		slog.Error("Qdrant client unavailable, answering without retrieval", "error", err)
		avail.VectorStore = false
	} else if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		slog.Error("Qdrant collection unavailable, answering without retrieval", "error", err)
		avail.VectorStore = false
		store = qdrantStore
		prober = qdrantStore
	} else {
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
		avail.VectorStore = true
		store = qdrantStore
		prober = qdrantStore
	}

	// Validate embedding client vector size (fail fast on misconfiguration,
	// degrade on unavailability)
	if avail.VectorStore {
		testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
		if err != nil {
			slog.Error("Embedding service unavailable, answering without retrieval", "error", err)
			avail.Embeddings = false
		} else if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
			log.Fatalf("Embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
		} else {
			slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)
		}
	}

	analyzer := rag.NewAnalyzer(llmClient, cfg.LLMModel, cfg.GenerateTimeout)
	retriever := rag.NewRetriever(embedder, store, cfg.QdrantCollection, cfg.Retrieval.TopK, cfg.EmbedTimeout, cfg.SearchTimeout)
	generator := rag.NewGenerator(llmClient, cfg.LLMModel, cfg.GenerateTimeout, cfg.Retrieval.UngroundedConfidence, cfg.Retrieval.ConfidenceCap)
	engine := rag.NewEngine(analyzer, retriever, generator, cfg.Retrieval, avail)
	slog.Info("Answer engine initialized",
		"vector_store", avail.VectorStore,
		"embeddings", avail.Embeddings,
		"llm", avail.LLM,
	)

	extractor := extract.NewExtractor(llmClient, cfg.LLMModel, cfg.GenerateTimeout)

	var pipeline handlers.DocumentIndexer
	if avail.CanRetrieve() {
		pipeline = indexer.NewPipeline(embedder, store, documentRepo, cfg.QdrantCollection)
	}

	deps := &http.Deps{
		Engine:         engine,
		Extractor:      extractor,
		Indexer:        pipeline,
		Answers:        answerRepo,
		Questions:      questionRepo,
		Prober:         prober,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
