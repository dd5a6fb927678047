package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"proposal-client/internal/config"
	"proposal-client/internal/guard"
)

// GuardMiddleware blocks protected views without a session. A blocked GET is
// remembered so login can resume it; actions are not replayed.
func GuardMiddleware(container *config.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Check(container.Sessions, r.URL.Path)
			if !decision.Allow {
				if r.Method == http.MethodGet {
					container.Coordinator.SetResume(decision.From)
				}
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "authentication required",
					"redirect": string(decision.Redirect),
					"from":     decision.From,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs each request with a request id
func LoggingMiddleware(container *config.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			container.Logger.Debug("Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", requestID,
			)
		})
	}
}
