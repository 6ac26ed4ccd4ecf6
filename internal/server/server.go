package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"kudos/internal/store"
	"kudos/internal/upload"
)

// BuildInfo is reported by /health.
type BuildInfo struct {
	Version string
	Commit  string
}

// Pinger is anything whose reachability /health reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr   string // e.g. ":8080"
	Build  BuildInfo
	Logger zerolog.Logger

	Store store.Store
	Relay *upload.Relay
	// Objects is the avatar bucket; nil leaves it out of /health.
	Objects Pinger

	IdentityHeader string
	MaxUploadBytes int64 // 0 disables the limit
	UploadRate     int   // avatar uploads per minute per client IP
	CORSOrigins    []string
	// TrustProxy enables RealIP. Without it the rate limiter keys on the
	// socket address and ignores forwarding headers.
	TrustProxy bool
}

type Server struct {
	httpServer *http.Server
	handler    http.Handler

	logger         zerolog.Logger
	build          BuildInfo
	store          store.Store
	relay          *upload.Relay
	objects        Pinger
	identityHeader string
	maxUploadBytes int64
	uploads        *rateLimiter
}

func New(cfg Config) *Server {
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = "X-User-Id"
	}
	if cfg.UploadRate <= 0 {
		cfg.UploadRate = 10
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{
		logger:         cfg.Logger,
		build:          cfg.Build,
		store:          cfg.Store,
		relay:          cfg.Relay,
		objects:        cfg.Objects,
		identityHeader: cfg.IdentityHeader,
		maxUploadBytes: cfg.MaxUploadBytes,
		uploads:        newRateLimiter(cfg.UploadRate, time.Minute),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(routeSpanMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", cfg.IdentityHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.HandleHealth)
	r.Get("/ready", s.HandleReady)
	r.Get("/live", s.HandleLive)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireIdentity)

		r.Get("/home", s.handleHome)
		r.Post("/kudos", s.handleCreateKudo)
		r.With(s.uploads.middleware).Post("/avatar", s.handleAvatar)
	})

	s.handler = otelhttp.NewHandler(r, "kudos",
		otelhttp.WithSpanNameFormatter(spanName),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.uploads.stop()
	return s.httpServer.Shutdown(ctx)
}

// spanName is the name a span carries until routeSpanMiddleware renames
// it. The raw path is never used.
func spanName(_ string, r *http.Request) string {
	return r.Method
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
