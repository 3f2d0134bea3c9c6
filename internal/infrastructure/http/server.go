package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	mw "github.com/rezkam/fiscal/internal/infrastructure/http/middleware"
	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// Defaults for zero ServerConfig fields.
const (
	DefaultPort              = "8080"
	DefaultServiceName       = "fiscal-api"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 60 * time.Second // installment batches pace their chunks
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 1 << 20
	DefaultCORSMaxAge        = 300
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string // empty listens on all interfaces
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty disables CORS headers entirely.
	CORSOrigins []string

	// ServiceName names the server spans.
	ServiceName string
}

// withDefaults returns a copy of cfg with every unset field filled in.
func (cfg ServerConfig) withDefaults() ServerConfig {
	pick := func(v, def time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return def
	}
	cfg.ReadTimeout = pick(cfg.ReadTimeout, DefaultReadTimeout)
	cfg.WriteTimeout = pick(cfg.WriteTimeout, DefaultWriteTimeout)
	cfg.IdleTimeout = pick(cfg.IdleTimeout, DefaultIdleTimeout)
	cfg.ReadHeaderTimeout = pick(cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	return cfg
}

// APIServer serves the fiscal API under /v1 plus an unauthenticated /health check.
type APIServer struct {
	server *http.Server
}

// NewAPIServer builds the router around apiHandler and the http.Server around the router.
func NewAPIServer(apiHandler http.Handler, cfg ServerConfig) *APIServer {
	cfg = cfg.withDefaults()

	return &APIServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           otelhttp.NewHandler(newRouter(apiHandler, cfg), cfg.ServiceName),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

func newRouter(apiHandler http.Handler, cfg ServerConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(corsOptions(cfg.CORSOrigins)))
	}
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	r.Get("/health", health)
	r.Mount("/v1", apiHandler)
	return r
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         DefaultCORSMaxAge,
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// Start listens until Shutdown is called. It then returns http.ErrServerClosed.
func (s *APIServer) Start() error {
	slog.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "Draining HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the fully wrapped handler, for tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
