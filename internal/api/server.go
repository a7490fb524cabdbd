// Package api exposes the conversation orchestrator over a JSON HTTP API.
//
// Routes:
//
//	POST /api/v1/invoke   run one conversation turn
//	GET  /health          liveness probe
//	GET  /ready           readiness probe (database ping)
//
// Health probes bypass the middleware stack so orchestration problems never
// shadow process liveness.
package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Runner      TurnRunner // Required
	DB          Pinger     // Optional: nil degrades /ready to liveness
	CORSOrigins []string   // Allowed origins for CORS
	TrustProxy  bool       // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateBurst   int        // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New("turn runner is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ih := &invokeHandler{runner: cfg.Runner, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/invoke", ih.invoke)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID precedes Logging so request_id is available in log attrs.
	// CORS precedes RateLimit so preflight OPTIONS gets proper headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.Handle("GET /ready", readiness(cfg.DB, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
