// Package server exposes the conversions over HTTP.
//
// Routes:
//
//	POST /md-to-pdf   multipart "file" (*.md)  -> application/pdf
//	POST /pdf-to-md   multipart "file" (*.pdf) -> text/markdown
//	GET  /            upload page
//	GET  /healthz     liveness probe
//
// Both conversion routes are also mounted under /api. Errors are JSON
// objects of the form {"error": "..."}.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
)

// Renderer converts Markdown to PDF. Implemented by *mdpdf.ConverterPool.
type Renderer interface {
	Convert(ctx context.Context, input mdpdf.Input) (*mdpdf.ConvertResult, error)
}

// Extractor converts PDF bytes to Markdown. Implemented by *mdpdf.Extractor.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*mdpdf.ExtractResult, error)
}

// Compile-time interface checks.
var (
	_ Renderer  = (*mdpdf.ConverterPool)(nil)
	_ Renderer  = (*mdpdf.Converter)(nil)
	_ Extractor = (*mdpdf.Extractor)(nil)
)

// Deps are the collaborators the HTTP layer delegates to.
type Deps struct {
	Renderer  Renderer
	Extractor Extractor
	Web       fs.FS // upload page; must contain index.html
	Logger    *slog.Logger
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and the underlying http.Server from cfg.
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           NewRouter(cfg, deps),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
	}
}

// NewRouter wires middleware and routes.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		renderer:  deps.Renderer,
		extractor: deps.Extractor,
		web:       deps.Web,
		uploadDir: cfg.Upload.Dir,
		maxBytes:  cfg.Upload.MaxBytes,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: msgMethodNotAllowed})
	})

	r.Get("/", h.index)
	r.Get("/healthz", h.health)

	conversions := func(r chi.Router) {
		r.Post("/md-to-pdf", h.markdownToPDF)
		r.Post("/pdf-to-md", h.pdfToMarkdown)
	}
	conversions(r)
	r.Route("/api", conversions)

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe runs the server until Shutdown is called.
// A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
