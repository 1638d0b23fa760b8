package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zafrem/data-detector/batch"
	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/otel"
	"github.com/zafrem/data-detector/rules"
	"github.com/zafrem/data-detector/token"
)

const defaultTimeout = 30 * time.Second

// Server holds all dependencies for the HTTP API and the websocket stream.
type Server struct {
	router      *chi.Mux
	engine      *detect.Engine
	store       *rules.Store
	tokenizer   *token.Tokenizer
	scanner     *batch.Scanner
	limiter     *RateLimiter
	apiKeys     []string
	corsOrigins []string
	version     string
	startTime   time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithAPIKeys sets the accepted API keys. With no keys the API is open.
func WithAPIKeys(keys ...string) Option {
	return func(s *Server) { s.apiKeys = keys }
}

// WithRateLimit enables request rate limiting. Zero or negative values
// leave the corresponding limit off.
func WithRateLimit(globalRPS, perCallerRPS float64) Option {
	return func(s *Server) { s.limiter = NewRateLimiter(globalRPS, perCallerRPS) }
}

// WithCORSOrigins sets allowed CORS origins (e.g. ["*"] for any).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithStore sets the rule store backing POST /v1/rules/reload (optional).
func WithStore(st *rules.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithTokenizer sets the tokenizer backing /v1/tokenize and /v1/detokenize (optional).
func WithTokenizer(tk *token.Tokenizer) Option {
	return func(s *Server) { s.tokenizer = tk }
}

// WithScanner sets the batch scanner backing the websocket stream.
func WithScanner(sc *batch.Scanner) Option {
	return func(s *Server) { s.scanner = sc }
}

// WithVersion sets the build version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds a Server around the detection engine with optional Option(s).
func NewServer(engine *detect.Engine, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		engine:      engine,
		corsOrigins: []string{"*"},
		version:     "dev",
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scanner == nil && engine != nil {
		if sc, err := batch.New(engine); err == nil {
			s.scanner = sc
		}
	}
	return s
}

// Routes returns the configured http.Handler (chi router with all middleware
// and routes). The websocket route is registered without the status-recording
// middleware and without a request timeout: both wrap the response writer,
// which breaks the connection hijack the upgrade needs.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(s.corsOrigins))

	// Unauthenticated
	r.Group(func(r chi.Router) {
		r.Use(otel.Middleware())
		r.Get("/health", s.handleHealth)
		r.Get("/v1/health", s.handleHealth)
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(otel.Middleware())
		r.Use(AuthMiddleware(s.apiKeys))
		r.Use(RateLimitMiddleware(s.limiter))
		r.Use(middleware.Timeout(defaultTimeout))

		r.Post("/v1/find", s.handleFind)
		r.Post("/v1/validate", s.handleValidate)
		r.Post("/v1/redact", s.handleRedact)
		r.Post("/v1/tokenize", s.handleTokenize)
		r.Post("/v1/detokenize", s.handleDetokenize)

		r.Get("/v1/rules", s.handleRulesList)
		r.Post("/v1/rules/reload", s.handleRulesReload)
	})

	// Websocket stream: the response writer must reach the handler unwrapped
	// so the upgrade can hijack the connection.
	r.Group(func(r chi.Router) {
		r.Use(otel.UpgradeMiddleware())
		r.Use(AuthMiddleware(s.apiKeys))
		r.Use(RateLimitMiddleware(s.limiter))
		r.Get("/v1/stream", s.handleStream)
	})

	return r
}
