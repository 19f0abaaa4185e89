package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheckFunc reports the health of one dependency
type HealthCheckFunc func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheckFunc
}

// HealthChecker handles health check requests
type HealthChecker struct {
	songs     func() int
	listeners func() int
	checks    []namedCheck
}

// NewHealthChecker creates a new health checker. songs and listeners report
// the catalog size and the number of open streams.
func NewHealthChecker(songs, listeners func() int) *HealthChecker {
	return &HealthChecker{songs: songs, listeners: listeners}
}

// AddCheck registers a dependency check reported in extended mode
func (h *HealthChecker) AddCheck(name string, check HealthCheckFunc) {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// RedisCheck pings a redis client
func RedisCheck(client *redis.Client) HealthCheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Songs     *int              `json:"songs,omitempty"`
	Listeners *int              `json:"listeners,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers the health route
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	songs, listeners := h.songs(), h.listeners()
	response.Songs = &songs
	response.Listeners = &listeners
	response.Checks = map[string]string{
		"catalog": "healthy",
		"stream":  "healthy",
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[c.name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
			continue
		}
		response.Checks[c.name] = "healthy"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, response)
}
