package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/spoolhq/spool-mcp/internal/agent"
	"github.com/spoolhq/spool-mcp/internal/dispatch"
	"github.com/spoolhq/spool-mcp/internal/handler"
	"github.com/spoolhq/spool-mcp/internal/middleware"
	"github.com/spoolhq/spool-mcp/internal/ratelimit"
	"github.com/spoolhq/spool-mcp/internal/spool"
)

// setupRoutes wires the Spool client, the dispatcher and the HTTP
// surface: health, the REST tool API and the MCP SSE endpoint.
func (s *Server) setupRoutes() http.Handler {
	cfg := s.cfg

	// ─── Client and dispatcher ──────────────────────────────────────────────────
	client := spool.NewClient(cfg.SpoolBaseURL, cfg.SpoolAPIKey, cfg.SpoolTimeout())
	limiter := ratelimit.New(cfg.RateLimitCalls, cfg.RateLimitPeriod())
	dispatcher := dispatch.New(client, limiter)

	// Without an Anthropic key the agent route stays mounted and
	// answers 503.
	var runner handler.PromptRunner
	if cfg.AnthropicAPIKey != "" {
		runner = agent.New(cfg.AnthropicAPIKey, cfg.AgentModel, cfg.AnthropicBaseURL, dispatcher)
	}

	log.Info().
		Str("spool_base_url", cfg.SpoolBaseURL).
		Int("rate_limit_calls", cfg.RateLimitCalls).
		Dur("rate_limit_period", cfg.RateLimitPeriod()).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("agent_enabled", runner != nil).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(client)
	toolsH := handler.NewToolsHandler(dispatcher)
	agentH := handler.NewAgentHandler(runner, cfg.AgentModel)
	mcpServer := NewMCPServer(dispatcher)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	var apiMiddleware []func(http.Handler) http.Handler
	if cfg.HTTPRateLimitPerMinute > 0 {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(cfg.HTTPRateLimitPerMinute, time.Minute))
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route("/v1", func(r chi.Router) {
			r.Get("/tools", toolsH.List)
			r.Post("/tools/{tool_name}", toolsH.Invoke)
			r.Post("/agent", agentH.Ask)
		})

		// MCP over SSE for network clients
		r.Mount("/mcp", mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil))
	})

	return r
}
