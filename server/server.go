// Package server exposes a host function registry over HTTP so scripts
// running outside the host process can reach it, and streams script console
// output to subscribers over a WebSocket.
package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// DefaultMaxBodySize bounds host function payloads accepted over HTTP (4MB).
const DefaultMaxBodySize = 4 * 1024 * 1024

// Registry is the set of host functions served. *hostfuncs.HandlerRegistry satisfies it.
type Registry interface {
	ports.HostInvoker
	Names() []string
}

// ConsoleSource hands out console message subscriptions.
// *hostfuncs.ConsoleSink satisfies it.
type ConsoleSource interface {
	Subscribe() (<-chan entities.LogMessageWire, func())
}

type serverConfig struct {
	logger      *slog.Logger
	schemas     ports.SchemaRegistry
	checkOrigin func(*http.Request) bool
	addr        string
	token       string
	maxBodySize int64
	pingPeriod  time.Duration
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		logger:      slog.Default(),
		addr:        "127.0.0.1:8420",
		maxBodySize: DefaultMaxBodySize,
		pingPeriod:  30 * time.Second,
	}
}

// Option configures a Server.
type Option func(*serverConfig)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serverConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSchemas publishes payload schemas in the host function listing.
func WithSchemas(schemas ports.SchemaRegistry) Option {
	return func(c *serverConfig) {
		c.schemas = schemas
	}
}

// WithAuthToken requires "Authorization: Bearer <token>" on every /v1 route.
func WithAuthToken(token string) Option {
	return func(c *serverConfig) {
		c.token = token
	}
}

// WithAddr sets the listen address used by HTTPServer.
func WithAddr(addr string) Option {
	return func(c *serverConfig) {
		if addr != "" {
			c.addr = addr
		}
	}
}

// WithMaxBodySize bounds accepted payloads.
func WithMaxBodySize(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithCheckOrigin replaces the WebSocket origin check. The default accepts
// same-origin requests and clients that send no Origin header.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *serverConfig) {
		c.checkOrigin = fn
	}
}

// WithPingPeriod sets how often idle console streams are pinged.
func WithPingPeriod(d time.Duration) Option {
	return func(c *serverConfig) {
		if d > 0 {
			c.pingPeriod = d
		}
	}
}

// Server is the HTTP + WebSocket bridge to a host function registry.
type Server struct {
	registry Registry
	console  ConsoleSource
	router   chi.Router
	upgrader websocket.Upgrader
	cfg      serverConfig
}

// New creates a Server for registry. console may be nil, in which case the
// stream route answers 404.
func New(registry Registry, console ConsoleSource, opts ...Option) *Server {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		registry: registry,
		console:  console,
		router:   chi.NewRouter(),
		upgrader: websocket.Upgrader{CheckOrigin: cfg.checkOrigin},
		cfg:      cfg,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/hostfuncs", s.handleListHostFuncs)
		r.Post("/hostfuncs/{name}", s.handleInvoke)
		r.Get("/console/stream", s.handleConsoleStream)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // console streams are long lived
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.cfg.logger.Info("bridge listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.cfg.logger.Debug("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.token)) != 1 {
			writeFault(w, entities.HostFault{Error: "UNAUTHORIZED", Message: "missing or invalid bearer token", Code: http.StatusUnauthorized})
			return
		}
		next.ServeHTTP(w, r)
	})
}
