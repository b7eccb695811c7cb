/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * actor_id, operation_code and approval_id fields across all components.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	actorIDKey       contextKey = "actor_id"
	operationCodeKey contextKey = "operation_code"
	approvalIDKey    contextKey = "approval_id"
)

/* WithLogContext adds logging fields to context */
func WithLogContext(ctx context.Context, requestID, actorID, operationCode string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if actorID != "" {
		ctx = context.WithValue(ctx, actorIDKey, actorID)
	}
	if operationCode != "" {
		ctx = context.WithValue(ctx, operationCodeKey, operationCode)
	}
	return ctx
}

/* WithApprovalIDLogContext adds an approval request ID to log context */
func WithApprovalIDLogContext(ctx context.Context, approvalID uuid.UUID) context.Context {
	return context.WithValue(ctx, approvalIDKey, approvalID.String())
}

/* GetRequestIDFromContext gets request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetActorIDFromContext gets actor ID from context */
func GetActorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetOperationCodeFromContext gets operation code from context */
func GetOperationCodeFromContext(ctx context.Context) string {
	if code, ok := ctx.Value(operationCodeKey).(string); ok {
		return code
	}
	return ""
}

/* GetApprovalIDFromContext gets approval request ID from context */
func GetApprovalIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(approvalIDKey).(string); ok {
		return id
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := log.Logger

	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if actorID := GetActorIDFromContext(ctx); actorID != "" {
		logger = logger.With().Str("actor_id", actorID).Logger()
	}
	if code := GetOperationCodeFromContext(ctx); code != "" {
		logger = logger.With().Str("operation_code", code).Logger()
	}
	if approvalID := GetApprovalIDFromContext(ctx); approvalID != "" {
		logger = logger.With().Str("approval_id", approvalID).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
