/*-------------------------------------------------------------------------
 *
 * middleware.go
 *    HTTP middleware for the approval API
 *
 * Provides authentication, security headers, CORS, and logging
 * middleware for the HTTP server.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/middleware.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/auth"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

/* KeyValidator resolves and verifies presented API keys */
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, key string) (*db.APIKey, error)
}

/* AuthMiddleware authenticates requests using service API keys */
func AuthMiddleware(keyManager KeyValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			/* Skip auth for health and metrics endpoints */
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			/* Format: "Bearer <key>" or "ApiKey <key>" */
			parts := strings.Fields(authHeader)
			if len(parts) != 2 {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			apiKey, err := keyManager.ValidateAPIKey(r.Context(), parts[1])
			if err != nil {
				metrics.WarnWithContext(r.Context(), "API key validation failed", map[string]interface{}{
					"key_prefix": auth.GetKeyPrefix(parts[1]),
					"error":      err.Error(),
				})
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/* APIKeyFromContext returns the authenticated key, if any */
func APIKeyFromContext(ctx context.Context) *db.APIKey {
	if key, ok := ctx.Value(apiKeyContextKey).(*db.APIKey); ok {
		return key
	}
	return nil
}

/* SecurityHeadersMiddleware adds security headers to all HTTP responses */
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

/* CORSMiddleware adds CORS headers */
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

/* LoggingMiddleware logs requests with structured logging and metrics */
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode), duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
