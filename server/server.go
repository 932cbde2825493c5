package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

// Config holds Server configuration.
type Config struct {
	Addr       string
	MaxResults int
	WindowDays int
}

// Deps holds all injectable dependencies for the Server.
type Deps struct {
	Engine     SearchEngine
	Summarizer Summarizer
	History    HistoryStore
	Timeline   TimelineBuilder
}

// Server is the REST API host.
type Server struct {
	cfg        Config
	engine     SearchEngine
	summarizer Summarizer
	history    HistoryStore
	timeline   TimelineBuilder
	httpSrv    *http.Server
}

// New creates a Server with the given configuration and dependencies.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:        cfg,
		engine:     deps.Engine,
		summarizer: deps.Summarizer,
		history:    deps.History,
		timeline:   deps.Timeline,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// The frontend is served from a separate dev server, so any origin
	// is allowed.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	s.httpSrv = &http.Server{
		Addr:    cfg.Addr,
		Handler: c.Handler(requestID(mux)),
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{$}", s.handleRoot)
	mux.HandleFunc("GET /api/rss-search", s.handleRSSSearch)
	mux.HandleFunc("GET /api/article-content", s.handleArticleContent)
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("GET /api/news/date-range", s.handleNewsDateRange)
	mux.HandleFunc("GET /api/news/date", s.handleNewsDate)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/searches", s.handleSearches)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the fully wrapped handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	slog.Info("server listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// requestID tags every request with a uuid, echoed back to the client
// and attached to the access log line.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		slog.Info("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError matches the {"detail": ...} error shape the frontend
// already expects.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
