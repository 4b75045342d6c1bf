package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"proposal-ai/internal/extract"
	"proposal-ai/internal/handlers"
	"proposal-ai/internal/rag"
	"proposal-ai/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine    rag.Engine
	Extractor *extract.Extractor
	// Indexer may be nil when the vector store is unavailable; document
	// routes then respond 503.
	Indexer handlers.DocumentIndexer
	// Answers and Questions may be nil to disable persistence.
	Answers   storage.AnswerStore
	Questions storage.QuestionStore
	// Prober may be nil when no vector store is configured.
	Prober         handlers.CollectionProber
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	answerHandler := handlers.NewAnswerHandler(deps.Engine, deps.Answers)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	extractHandler := handlers.NewExtractHandler(deps.Extractor, deps.Questions)
	healthHandler := handlers.NewHealthHandler(deps.Prober, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/answer", answerHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodPost, "/extract", extractHandler)
		r.Method(http.MethodGet, "/health", healthHandler)

		if deps.Indexer != nil {
			documentHandler := handlers.NewDocumentHandler(deps.Indexer)
			r.Post("/documents", documentHandler.Index)
			r.Delete("/documents/{documentID}", documentHandler.Remove)
		} else {
			unavailable := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
			r.Post("/documents", unavailable)
			r.Delete("/documents/{documentID}", unavailable)
		}
	})

	return r
}
