package handler

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aryan0dhankhar/tasktracker/internal/observability/metrics"
	"github.com/aryan0dhankhar/tasktracker/internal/security/audit"
	"github.com/aryan0dhankhar/tasktracker/internal/security/middleware"
)

// RouterConfig wires handlers and cross-cutting middleware
type RouterConfig struct {
	Auth               *AuthHandler
	Tasks              *TaskHandler
	Health             *HealthHandler
	Verifier           middleware.TokenVerifier
	Audit              *audit.Logger
	Metrics            http.Handler
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter builds the HTTP surface.
// Order, outermost first: request id, real ip, request log, recover, CORS,
// metrics, mux. Protected routes add the gate, the audit log and the JSON
// content-type check, in that order.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	gate := middleware.RequireAuth(cfg.Verifier, log)
	jsonBody := middleware.ValidateJSONContentType(log)
	protect := func(h http.HandlerFunc) http.Handler {
		return gate(h)
	}
	// the gate answers first, so bad credentials never surface as 415
	protectAudited := func(h http.HandlerFunc) http.Handler {
		if cfg.Audit == nil {
			return gate(jsonBody(h))
		}
		return gate(middleware.AuditMiddleware(cfg.Audit)(jsonBody(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/register", jsonBody(http.HandlerFunc(cfg.Auth.Register)))
	mux.Handle("POST /api/login", jsonBody(http.HandlerFunc(cfg.Auth.Login)))
	mux.Handle("GET /api/me", protect(cfg.Auth.Me))

	mux.Handle("GET /api/tasks", protect(cfg.Tasks.List))
	mux.Handle("POST /api/tasks", protectAudited(cfg.Tasks.Create))
	mux.Handle("DELETE /api/tasks", protectAudited(cfg.Tasks.ClearCompleted))
	mux.Handle("PUT /api/tasks/{id}", protectAudited(cfg.Tasks.Update))
	mux.Handle("DELETE /api/tasks/{id}", protectAudited(cfg.Tasks.Delete))

	if cfg.Health != nil {
		mux.HandleFunc("GET /healthz", cfg.Health.Health)
		mux.HandleFunc("GET /readyz", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var h http.Handler = mux
	h = metrics.HTTPMetricsMiddleware(h)
	h = middleware.CORS(cfg.CORSAllowedOrigins)(h)
	h = middleware.Recover(log)(h)
	h = middleware.RequestLogger(log)(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}
