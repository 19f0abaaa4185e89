package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/mood-poll/internal/middleware"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// RouterConfig collects everything the HTTP surface is built from
type RouterConfig struct {
	Poll    *PollHandler
	Events  *EventsHandler
	Health  *HealthChecker
	OpenAPI *OpenAPIHandler
	// Static is optional; without it unknown paths are 404
	Static http.Handler

	Logger         *zap.Logger
	AllowedOrigins []string
	EnableHSTS     bool
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// VoteLimiter is optional rate limiting middleware for POST /vote
	VoteLimiter func(http.Handler) http.Handler
	// Tracing enables otelmux spans for every request
	Tracing     bool
	ServiceName string
}

// NewRouter builds the routed, middleware-wrapped HTTP handler.
// In gorilla/mux, middleware registered first is the outermost wrapper.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()

	if cfg.Tracing {
		r.Use(otelmux.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MaxRequestSize(cfg.MaxBodyBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Audit(logger))
	r.Use(middleware.Logging(logger))

	// Streams stay outside the timeout, which would buffer them
	if cfg.Events != nil {
		cfg.Events.RegisterRoutes(r)
	}

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Timeout(cfg.RequestTimeout))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(api)
	}
	if cfg.OpenAPI != nil {
		cfg.OpenAPI.RegisterRoutes(api)
	}
	if cfg.Poll != nil {
		cfg.Poll.RegisterRoutes(api)

		vote := api.NewRoute().Subrouter()
		if cfg.VoteLimiter != nil {
			vote.Use(cfg.VoteLimiter)
		}
		cfg.Poll.RegisterVoteRoute(vote)
	}

	// Preflight requests are answered by the CORS middleware
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if cfg.Static != nil {
		r.PathPrefix("/").Handler(cfg.Static)
	}

	return r
}
