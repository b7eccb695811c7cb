/*-------------------------------------------------------------------------
 *
 * request_id.go
 *    Request ID middleware for the approval API
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/request_id.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

const requestIDKey contextKey = "request_id"

/* RequestIDMiddleware adds a unique request ID to each request */
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = metrics.WithLogContext(ctx, requestID, "", "")
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)
	})
}

/* GetRequestID gets the request ID from context */
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
