package rest

import (
	"log/slog"
	"net/http"

	"github.com/bibbank/fraudscore/pkg/auth"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Scoring        *ScoringHandler
	Health         *HealthHandler
	Metrics        http.Handler
	JWT            *auth.JWTService
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *slog.Logger
}

// NewRouter builds the mux and wraps it in logging, rate limiting and auth.
// Probes and /metrics bypass authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Scoring.RegisterRoutes(mux)

	skip := []string{"/healthz", "/readyz"}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
		skip = append(skip, "/metrics")
	}

	var h http.Handler = mux
	h = AuthMiddleware(cfg.JWT, skip, cfg.Logger)(h)
	if cfg.RateLimitRPS > 0 {
		h = RateLimitMiddleware(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))(h)
	}
	h = LoggingMiddleware(cfg.Logger)(h)
	return h
}
