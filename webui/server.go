// Package webui serves the published render artifacts over HTTP so the
// e-paper device can poll for the current image and hash.
package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nowplaying/core"
	"nowplaying/logging"
)

// Timeouts for the artifact server. The payloads are tiny (a small PNG
// and a hex digest) so short limits are safe.
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server exposes the output directory read-only:
//
//	GET /            directory listing of the output dir
//	GET /<artifact>  the published image or hash file
//	GET /healthz     liveness probe with the server version
//
// Only GET and HEAD are accepted; everything else gets 405. Writes stay
// the renderer's job, the server never mutates the output directory.
type Server struct {
	httpServer *http.Server
	log        *logging.Logger
	version    string
}

// NewServer creates the artifact server for the configured output dir.
func NewServer(cfg *core.Config, log *logging.Logger, version string) *Server {
	s := &Server{
		log:     log,
		version: version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", http.FileServer(http.Dir(cfg.OutputDir)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      s.readOnly(s.logged(mux)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Handler returns the server's root handler. Used by tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving in a background goroutine. A listen failure is
// reported through the returned channel; a clean shutdown closes it.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.log.Info("artifact server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// readOnly rejects every method except GET and HEAD.
func (s *Server) readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logged records method, path, status and duration for every request.
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
