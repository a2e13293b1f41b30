package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Span attribute keys.
const (
	AttrRunID       = attribute.Key("alchemist.run_id")
	AttrSessionID   = attribute.Key("alchemist.session_id")
	AttrEntity      = attribute.Key("alchemist.entity")
	AttrRows        = attribute.Key("alchemist.rows")
	AttrDiagnostics = attribute.Key("alchemist.diagnostics")
	AttrErrors      = attribute.Key("alchemist.errors")
	AttrWarnings    = attribute.Key("alchemist.warnings")
	AttrCanProceed  = attribute.Key("alchemist.can_proceed")
	AttrChecks      = attribute.Key("alchemist.checks")
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPRoute   = attribute.Key("http.route")
)

// SetRunAttribute tags the span with a run ID.
func SetRunAttribute(span trace.Span, runID string) {
	if runID != "" {
		span.SetAttributes(AttrRunID.String(runID))
	}
}

// SetSessionAttribute tags the span with a session ID.
func SetSessionAttribute(span trace.Span, sessionID string) {
	if sessionID != "" {
		span.SetAttributes(AttrSessionID.String(sessionID))
	}
}

// EntityAttributes describes one entity set.
func EntityAttributes(entity dataset.EntityType, rows int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEntity.String(string(entity)),
		AttrRows.Int(rows),
	}
}

// HTTPAttributes describes an incoming request.
func HTTPAttributes(method, route string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
	}
}
