package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prooflens/prooflens/internal/server/handlers"
	servermw "github.com/prooflens/prooflens/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Grammar analysis: POST only, quota checked after the method gate so a
	// stray GET never burns a window slot.
	analyzeLimit := servermw.RateLimit(s.deps.Limiter, servermw.RateLimitOptions{
		Route:  "grammar",
		Policy: s.deps.AnalyzePolicy,
	})
	analyze := handlers.NewAnalyzeHandler(s.deps.Analyzer)
	s.router.With(servermw.AllowMethod(http.MethodPost), analyzeLimit).
		Handle("/api/grammar", analyze)

	// Greeting: any method, plain-text throttle body.
	greetingLimit := servermw.RateLimit(s.deps.Limiter, servermw.RateLimitOptions{
		Route:  "hello",
		Policy: s.deps.GreetingPolicy,
		Deny:   handlers.GreetingDeny,
	})
	s.router.With(greetingLimit).HandleFunc("/api/hello", handlers.Greeting)

	// Standard health endpoints
	s.router.Get("/health", s.deps.Health.HealthHandler)
	s.router.Get("/health/live", s.deps.Health.LivenessHandler)
	s.router.Get("/health/ready", s.deps.Health.ReadinessHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	if s.deps.MetricsEnabled {
		s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
	}
}
