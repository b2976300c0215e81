// Package router assembles the HTTP surface: the route table and the
// middleware chain every request passes through.
//
// REQUEST PATH (outermost first):
//
//	CORS → request id → real IP → request logger → panic recovery
//	     → body size limit → general rate limit → request timeout
//	     → Prometheus instrumentation → ServeMux → (route middleware) → handler
//
// Route-level middleware is applied inside the mux: the login route gets
// its own stricter limiter and every /api/students route gets the
// bearer-token check.
package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aanand-mishra/students-api/internal/auth"
	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/handlers/docs"
	"github.com/aanand-mishra/students-api/internal/http/handlers/health"
	"github.com/aanand-mishra/students-api/internal/http/handlers/login"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/metrics"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/validation"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 10 << 20

// Deps are the long-lived objects the handlers close over.
type Deps struct {
	Config    *config.Config
	Storage   storage.Storage
	Auth      *auth.Service
	Validator *validation.Validator
	Metrics   *metrics.Metrics
	Docs      *docs.Docs
	StartedAt time.Time
}

// New returns the fully wrapped handler for http.Server.
func New(d Deps) http.Handler {
	cfg := d.Config
	info := health.Info{Env: cfg.Env, Version: cfg.Version, StartedAt: d.StartedAt, Docs: docs.Path}

	protected := middleware.Authenticate(d.Auth)
	loginLimit := middleware.RateLimit(cfg.RateLimit.Login, cfg.RateLimit.Window,
		"Too many login attempts", "Too many login attempts from this IP, please try again after 15 minutes.")

	mux := http.NewServeMux()

	// ── Auth ──────────────────────────────────────────────────────────────
	mux.Handle("POST /api/auth/login", loginLimit(login.New(d.Auth, d.Validator)))

	// ── Students (bearer token required) ──────────────────────────────────
	mux.Handle("POST /api/students", protected(student.New(d.Storage, d.Validator)))
	mux.Handle("GET /api/students", protected(student.GetList(d.Storage, d.Validator)))
	mux.Handle("GET /api/students/{id}", protected(student.GetByID(d.Storage, d.Validator)))
	mux.Handle("PUT /api/students/{id}", protected(student.Update(d.Storage, d.Validator)))
	mux.Handle("DELETE /api/students/{id}", protected(student.Delete(d.Storage, d.Validator)))

	// ── Service endpoints ─────────────────────────────────────────────────
	mux.Handle("GET /health", health.New(d.Storage, info))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// ── API documentation ─────────────────────────────────────────────────
	mux.Handle("GET "+docs.Path, d.Docs.UI())
	mux.Handle("GET "+docs.Path+"/{$}", d.Docs.UI())
	mux.Handle("GET "+docs.Path+"/openapi.yaml", d.Docs.YAML())
	mux.Handle("GET "+docs.Path+"/openapi.json", d.Docs.JSON())

	if cfg.StaticDir != "" {
		mux.Handle("GET /api/", health.NotFound(info))
		mux.Handle("GET /", spa(cfg.StaticDir))
	} else {
		mux.Handle("GET /{$}", health.Index(info))
	}
	mux.Handle("/", health.NotFound(info))

	return chain(mux,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		chimw.RequestID,
		chimw.RealIP,
		middleware.RequestLogger,
		middleware.Recover(cfg.IsDev()),
		chimw.RequestSize(MaxBodyBytes),
		middleware.RateLimit(cfg.RateLimit.General, cfg.RateLimit.Window,
			"Too many requests", "Too many requests from this IP, please try again later."),
		chimw.Timeout(cfg.RequestTimeout),
		d.Metrics.Instrument,
	)
}

// chain wraps h so the first middleware is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// spa serves files from dir and falls back to index.html so client-side
// routes survive a page reload.
func spa(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/")))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}
