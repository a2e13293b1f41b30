package logging

import (
	"context"
	"log/slog"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for validation run IDs.
	RunIDKey contextKey = "run_id"

	// SessionIDKey is the context key for session IDs.
	SessionIDKey contextKey = "session_id"

	// EntityTypeKey is the context key for the entity set being processed.
	EntityTypeKey contextKey = "entity_type"

	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// WithSessionID adds a session ID to the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// WithEntityType adds the entity set being processed to the context.
func WithEntityType(ctx context.Context, entity dataset.EntityType) context.Context {
	return context.WithValue(ctx, EntityTypeKey, entity)
}

// GetEntityType retrieves the entity set from the context.
func GetEntityType(ctx context.Context) dataset.EntityType {
	e, _ := ctx.Value(EntityTypeKey).(dataset.EntityType)
	return e
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the HTTP request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// contextAttrs extracts the known context fields as log attributes.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), id))
	}
	if id := GetRunID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(RunIDKey), id))
	}
	if id := GetSessionID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(SessionIDKey), id))
	}
	if e := GetEntityType(ctx); e != "" {
		attrs = append(attrs, slog.String(string(EntityTypeKey), string(e)))
	}
	return attrs
}

// contextHandler adds context fields to every record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
