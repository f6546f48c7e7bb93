// Package context carries per-request values (request id, scoped logger and
// authenticated caller) between the echo layer and the use cases.
package context

import (
	"context"
	"log/slog"

	"brokerage/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	KeyRequestID ContextKey = "request_id"
	KeyLogger    ContextKey = "logger"
	KeyActor     ContextKey = "actor"

	HeaderXRequestID = "X-Request-Id"

	maxRequestIDLength = 64
)

// ValidRequestID accepts client ids of up to 64 letters, digits, '-', '_' or '.'.
// Anything else is replaced with a generated id so it cannot pollute logs.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}

	return true
}

// GetRequestID returns the id set by the request-id middleware, or a fresh one.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// GetRequestIDFromContext returns "" outside an HTTP request.
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRequestID).(string); ok {
		return id
	}

	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok {
		return logger
	}

	return nil
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// SetActor stores the authenticated caller on the echo context and tags the
// request-scoped logger with the caller's id and role.
func SetActor(c echo.Context, actor usecase.Actor) {
	c.Set(string(KeyActor), actor)

	ctx := c.Request().Context()
	if logger := GetLogger(ctx); logger != nil {
		logger = logger.With(
			slog.String("user_id", actor.UserID.String()),
			slog.String("role", actor.Role.String()),
		)
		c.SetRequest(c.Request().WithContext(WithLogger(ctx, logger)))
	}
}

// GetActor returns the caller stored by SetActor.
func GetActor(c echo.Context) (usecase.Actor, bool) {
	actor, ok := c.Get(string(KeyActor)).(usecase.Actor)

	return actor, ok
}
