// Package inspect serves a live view of a navigation tree over HTTP: the
// current tree and manifest as JSON, shadow-analysis findings, a navigation
// endpoint for driving the tree by hand, commit events over WebSocket, and
// Prometheus metrics.
package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	outlet "github.com/vango-dev/outlet"
	"github.com/vango-dev/outlet/pkg/manifest"
	"github.com/vango-dev/outlet/pkg/nav"
	"github.com/vango-dev/outlet/pkg/pattern"
)

// Server exposes a root's navigation tree for inspection.
type Server struct {
	root   *outlet.Root
	hub    *Hub
	logger *slog.Logger

	httpServer  *http.Server
	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an inspector for root and subscribes to its commits, so
// connected WebSocket clients see every navigation as it lands.
func NewServer(root *outlet.Root, opts ...Option) *Server {
	s := &Server{
		root:   root,
		hub:    NewHub(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = root.OnCommit(s.hub.BroadcastCommit)
	return s
}

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/api/tree", s.handleTree)
	r.Get("/api/manifest", s.handleManifest)
	r.Get("/api/lint", s.handleLint)
	r.Post("/api/navigate", s.handleNavigate)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe serves the inspector on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	s.logger.Info("inspector listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and tears down the hub and the commit
// subscription.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleTree returns the current tree snapshot's root node.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Snapshot(s.root.Node())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, m.Root)
}

// handleManifest returns the full manifest document.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Snapshot(s.root.Node())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, m)
}

// handleLint returns shadow-analysis findings for the current tree.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Snapshot(s.root.Node())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	findings, err := manifest.Lint(m)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if findings == nil {
		findings = []manifest.Finding{}
	}
	s.writeJSON(w, findings)
}

// navigateRequest is the body of POST /api/navigate.
type navigateRequest struct {
	Path     string         `json:"path"`
	Passed   map[string]any `json:"passed,omitempty"`
	Recovery bool           `json:"recovery,omitempty"`
}

// navigateResponse reports the settled result of a navigation.
type navigateResponse struct {
	Phase      string         `json:"phase"`
	Path       string         `json:"path"`
	LocalPath  string         `json:"localPath,omitempty"`
	Route      string         `json:"route,omitempty"`
	Params     pattern.Params `json:"params,omitempty"`
	Tail       string         `json:"tail,omitempty"`
	Superseded bool           `json:"superseded,omitempty"`
}

// handleNavigate drives the tree through a navigation or recovery.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var res *nav.Result
	var err error
	if req.Recovery {
		res, err = s.root.Recover(r.Context(), req.Path)
	} else {
		res, err = s.root.Navigate(r.Context(), req.Path, req.Passed)
	}
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := navigateResponse{
		Phase:      res.Phase.String(),
		Path:       res.Path,
		LocalPath:  res.LocalPath,
		Params:     res.Params,
		Superseded: res.Superseded,
	}
	if res.Route != nil {
		resp.Route = res.Route.Path
	}
	if res.HasTail {
		resp.Tail = res.Tail
	}
	s.writeJSON(w, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("inspector response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
