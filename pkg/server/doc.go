// Package server exposes the validation engine over HTTP.
//
// Routes:
//
//	POST   /v1/validate               stateless validation of {clients, workers, tasks}
//	POST   /v1/sessions               create a session from the same body
//	GET    /v1/sessions/{id}          current report of a session
//	POST   /v1/sessions/{id}/edits    apply a cell edit
//	POST   /v1/sessions/{id}/fixes    apply one fix, or all fixes of an entity set
//	DELETE /v1/sessions/{id}          drop a session
//	GET    /v1/runs                   recorded runs (limit, offset, since, blocked)
//	GET    /v1/runs/{id}              one recorded run
//	GET    /health, /ready, /version  health endpoints
//	GET    /metrics                   Prometheus metrics, when enabled
//
// Errors are JSON objects of the form {"error": {"code": ..., "message": ...}}.
// Sessions idle for longer than server.session_ttl are discarded.
package server
