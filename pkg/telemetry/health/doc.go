// Package health serves liveness, readiness and version endpoints for the
// validation API.
//
// Readiness runs each registered check concurrently with a per-check
// timeout. The server registers a check for the run history store when
// history is enabled.
//
//	checker := health.New(0)
//	checker.Register("history", store.Ping)
//	health.Register(mux, checker, version, commit, buildTime)
package health
