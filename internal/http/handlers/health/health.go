// Package health serves the unauthenticated service endpoints: the
// health check and the API information document.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// Pinger is the part of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Info describes the running service.
type Info struct {
	Env       string
	Version   string
	StartedAt time.Time

	// Docs is the path of the API documentation UI.
	Docs string
}

// Status is the body of GET /health.
type Status struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
	Version     string  `json:"version"`
	Database    string  `json:"database"`
}

// New handles GET /health. It always answers 200; store reachability is
// reported in the "database" field.
func New(store Pinger, info Info) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "connected"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			slog.Warn("health check: store unreachable", slog.String("error", err.Error()))
			database = "disconnected"
		}

		now := time.Now()
		response.WriteJSON(w, http.StatusOK, Status{
			Status:      "OK",
			Message:     "College Management System API is running",
			Timestamp:   now.UTC().Format(time.RFC3339Nano),
			Uptime:      now.Sub(info.StartedAt).Seconds(),
			Environment: info.Env,
			Version:     info.Version,
			Database:    database,
		})
	}
}

// Index handles GET / with a map of the available endpoints.
func Index(info Info) http.HandlerFunc {
	body := map[string]any{
		"message":       "Welcome to College Management System API",
		"version":       info.Version,
		"documentation": info.Docs,
		"endpoints": map[string]any{
			"health":  "GET /health",
			"metrics": "GET /metrics",
			"docs":    "GET " + info.Docs,
			"login":   "POST /api/auth/login",
			"students": map[string]string{
				"list":   "GET /api/students",
				"create": "POST /api/students",
				"get":    "GET /api/students/{id}",
				"update": "PUT /api/students/{id}",
				"delete": "DELETE /api/students/{id}",
			},
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, body)
	}
}

// NotFound is the JSON fallback for unmatched routes.
func NotFound(info Info) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("route not found",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))

		body := response.Error("Route not found", "Cannot "+r.Method+" "+r.URL.Path)
		if info.Docs != "" {
			body.Suggestion = "Check the API documentation at " + info.Docs
		}
		response.WriteJSON(w, http.StatusNotFound, body)
	}
}
