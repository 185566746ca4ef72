package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

// Business context keys propagated through request contexts.
const (
	UserIDKey        ContextKey = "user_id"
	AuthStageKey     ContextKey = "auth.stage"
	CacheResourceKey ContextKey = "auth.cache.resource"
)

// GlobalContext is set by Init and used where no logger is injected.
var GlobalContext *ContextLogger

// ContextLogger enriches log lines with business context carried in the
// request context.
type ContextLogger struct {
	logger *slog.Logger
}

// NewContextLogger creates a new context-aware logger.
func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext returns a logger with known context values added as fields.
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger

	var fields []any
	if userID := ctx.Value(UserIDKey); userID != nil {
		fields = append(fields, string(UserIDKey), userID)
	}
	if stage := ctx.Value(AuthStageKey); stage != nil {
		fields = append(fields, string(AuthStageKey), stage)
	}
	if resource := ctx.Value(CacheResourceKey); resource != nil {
		fields = append(fields, string(CacheResourceKey), resource)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}

// LogDuration emits a timing record for one named operation.
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, ms int64) {
	cl.WithContext(ctx).Info("operation completed",
		"operation", operation,
		"duration_ms", ms)
}

// WithUserID adds the authenticated user ID to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithAuthStage records which step of the authentication state machine is running.
func WithAuthStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, AuthStageKey, stage)
}

// WithCacheResource records which cache sub-resource an upstream call refreshes.
func WithCacheResource(ctx context.Context, resource string) context.Context {
	return context.WithValue(ctx, CacheResourceKey, resource)
}
