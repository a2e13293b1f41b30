// Package metrics exports Prometheus metrics for validation runs and the
// HTTP API.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng := engine.New(engine.Options{Observer: collector})
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// # Metrics
//
//   - alchemist_validation_runs_total{outcome}
//   - alchemist_validation_run_duration_seconds
//   - alchemist_validation_pass_duration_seconds{entity,pass}
//   - alchemist_validation_diagnostics_total{entity,kind,severity}
//   - alchemist_validation_fixes_total{kind,result}
//   - alchemist_http_requests_total{route,method,code}
//   - alchemist_http_request_duration_seconds{route}
//   - alchemist_http_active_sessions
//
// Each collector owns its own registry, so tests can create as many as they
// need without duplicate-registration panics.
package metrics
