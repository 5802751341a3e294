// Package httpapi serves the search engine over HTTP: the search and
// facet-discovery endpoints, a health probe and a service banner, with
// CORS, request-ID logging and panic recovery in front.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fascase/fascase/internal/search"
)

// Config tunes the HTTP server.
type Config struct {
	// Addr is the listen address ("0.0.0.0:8000").
	Addr string

	// CORSOrigins are the allowed browser origins.
	CORSOrigins []string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// EnablePprof mounts net/http/pprof under /debug/pprof.
	EnablePprof bool

	// Version is reported by the banner and health endpoints.
	Version string
}

// DefaultCORSOrigins are the local frontend dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:3001",
	"http://127.0.0.1:3001",
}

// Server is the HTTP front end over one search engine.
type Server struct {
	engine *search.Engine
	cfg    Config
	logger *slog.Logger
}

// NewServer creates a server. logger may be nil.
func NewServer(engine *search.Engine, cfg Config, logger *slog.Logger) *Server {
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = DefaultCORSOrigins
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, cfg: cfg, logger: logger}
}

// Router builds the gin handler with all routes and middleware mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.requestID(), s.logging(), s.recovery(), s.cors())

	r.GET("/", s.handleRoot)
	r.GET("/api/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/search", s.handleSearch)
		api.GET("/filters", s.handleFilters)
	}

	if s.cfg.EnablePprof {
		mountPprof(r)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("http server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown timed out, closing", "error", err)
		return srv.Close()
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func mountPprof(r *gin.Engine) {
	dbg := r.Group("/debug/pprof")
	dbg.GET("/", gin.WrapF(pprof.Index))
	dbg.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	dbg.GET("/profile", gin.WrapF(pprof.Profile))
	dbg.GET("/symbol", gin.WrapF(pprof.Symbol))
	dbg.GET("/trace", gin.WrapF(pprof.Trace))
	dbg.GET("/:name", gin.WrapF(pprof.Index))
}
