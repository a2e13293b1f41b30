// Package tracing sets up OpenTelemetry tracing for validation runs and the
// HTTP API.
//
// When enabled, spans are exported over OTLP gRPC to the configured
// collector and the provider is installed globally, so the engine's own
// spans (engine.Validate, engine.validateEntity, engine.validateConsistency)
// nest under the request span started by HTTPMiddleware.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "cli.validate")
//	defer span.End()
//
// W3C Trace Context and Baggage headers are extracted from incoming requests.
// Sampling is parent based with a fixed ratio for root spans.
package tracing
