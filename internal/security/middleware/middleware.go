package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aryan0dhankhar/tasktracker/internal/observability/metrics"
	"github.com/aryan0dhankhar/tasktracker/internal/security/audit"
	"github.com/aryan0dhankhar/tasktracker/internal/security/auth"
)

type IdentityContextKey struct{}

// TokenVerifier is the part of the token service the gate depends on
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// RequireAuth is the access gate for protected routes.
// No bearer token yields 401, a token that fails verification yields 403,
// and only a verified identity reaches next, stored in the request context.
func RequireAuth(tv TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				metrics.ObserveGate("no_token")
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			identity, err := tv.Verify(tokenString)
			if err != nil {
				metrics.ObserveGate("invalid_token")
				log.Debug("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			metrics.ObserveGate("authenticated")
			ctx := context.WithValue(r.Context(), IdentityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentityFromContext returns the identity attached by RequireAuth
func GetIdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey{}).(*auth.Identity)
	return id, ok && id != nil
}

// WithIdentity attaches an identity to ctx the same way RequireAuth does
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey{}, id)
}

// AuditMiddleware records every mutating request that made it past the gate
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if r.Method == http.MethodGet || r.Method == http.MethodOptions || r.Method == http.MethodHead {
				return
			}
			userID := ""
			if id, ok := GetIdentityFromContext(r.Context()); ok {
				userID = id.UserID
			}
			auditLog.LogAction(r.Context(), userID, actionFor(r), "task", r.PathValue("id"), outcome(sw.status))
		})
	}
}

func actionFor(r *http.Request) string {
	switch r.Method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		if r.PathValue("id") == "" {
			return "clear_completed"
		}
		return "delete"
	}
	return strings.ToLower(r.Method)
}

func outcome(status int) string {
	switch {
	case status < 400:
		return "success"
	case status == http.StatusNotFound:
		return "not_found"
	case status < 500:
		return "rejected"
	}
	return "error"
}

// CORS honours the configured origins, mirroring the matched origin back
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// RequestLogger logs one line per request with the request id set by chi's RequestID
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				sw.Header().Set("X-Request-ID", reqID)
			}

			next.ServeHTTP(sw, r)

			log.Info("request completed",
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover turns a panic into a generic 500 without leaking internals
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				log.Error("panic serving request",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
