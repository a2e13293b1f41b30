// Package telemetry groups the observability packages of the validator.
//
//   - logging: slog setup with run and session context
//   - metrics: Prometheus collector for validation runs, fixes and the API
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness and readiness endpoints
//
// Each subpackage is configured from config.TelemetryConfig and can be
// disabled independently.
package telemetry
