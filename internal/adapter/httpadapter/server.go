package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

// maxDocumentBytes caps request bodies on the render endpoint.
const maxDocumentBytes = 32 << 20

// FeedRenderer turns a GeoJSON document into a feed document.
type FeedRenderer interface {
	Render(ctx context.Context, kind domain.Kind, doc []byte) (domain.Document, error)
}

// Server exposes health, readiness, metrics, and the on-demand render endpoint.
type Server struct {
	httpServer *http.Server
	renderer   FeedRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /cap/{kind} routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, renderer FeedRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		renderer: renderer,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /cap/{kind}", s.handleRender)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.renderer.Render(r.Context(), kind, body)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logger.Warn("render request failed", "kind", kind, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Header().Set("X-Feed-Entries", strconv.Itoa(doc.Entries))
	w.Header().Set("X-Feed-Skipped", strconv.Itoa(len(doc.Skipped)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.XML); err != nil {
		s.logger.Warn("write feed response failed", "kind", kind, "error", err)
	}
}
