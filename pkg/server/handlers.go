package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/tracing"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes an API error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResponse is returned by the session endpoints.
type SessionResponse struct {
	ID     string         `json:"id"`
	Report *engine.Report `json:"report"`
}

// FixRequest selects one diagnostic, or every fixable diagnostic of an
// entity set when All is true.
type FixRequest struct {
	DiagnosticID string             `json:"diagnosticId,omitempty"`
	EntityType   dataset.EntityType `json:"entityType,omitempty"`
	All          bool               `json:"all,omitempty"`
}

// FixResponse reports how many fixes applied and the resulting report.
type FixResponse struct {
	Applied int            `json:"applied"`
	Report  *engine.Report `json:"report"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var in engine.Input
	if !s.decode(w, r, &in) {
		return
	}

	started := time.Now()
	report, err := s.engine.Validate(r.Context(), in)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.record(r, report, in, started)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in engine.Input
	if !s.decode(w, r, &in) {
		return
	}

	id, sess := s.sessions.Create()
	ctx := sessionContext(r, id)

	started := time.Now()
	report, err := sess.LoadInput(ctx, in)
	if err != nil {
		s.sessions.Delete(id)
		s.internalError(w, r, err)
		return
	}
	s.record(r.WithContext(ctx), report, in, started)

	s.logger.InfoContext(ctx, "session created", "can_proceed", report.CanProceed)
	writeJSON(w, http.StatusCreated, SessionResponse{ID: id, Report: report})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sessionContext(r, id)
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", fmt.Sprintf("session %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, Report: sess.Report()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := sessionContext(r, id)
	if !s.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session_not_found", fmt.Sprintf("session %q not found", id))
		return
	}
	s.logger.DebugContext(ctx, "session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := sessionContext(r, id)
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", fmt.Sprintf("session %q not found", id))
		return
	}

	var edit engine.CellEdit
	if !s.decode(w, r, &edit) {
		return
	}

	report, err := sess.Edit(logging.WithEntityType(ctx, edit.EntityType), edit)
	if err != nil {
		s.sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, Report: report})
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := sessionContext(r, id)
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", fmt.Sprintf("session %q not found", id))
		return
	}

	var req FixRequest
	if !s.decode(w, r, &req) {
		return
	}

	switch {
	case req.All:
		if req.EntityType == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "entityType is required when all is true")
			return
		}
		report, n, err := sess.ApplyAllFixes(ctx, req.EntityType)
		if err != nil {
			s.sessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, FixResponse{Applied: n, Report: report})

	case req.DiagnosticID != "":
		report, applied, err := sess.ApplyFix(ctx, req.DiagnosticID)
		if err != nil {
			s.sessionError(w, r, err)
			return
		}
		n := 0
		if applied {
			n = 1
		}
		writeJSON(w, http.StatusOK, FixResponse{Applied: n, Report: report})

	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "diagnosticId or entityType with all=true is required")
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "run history is disabled")
		return
	}

	q, err := parseRunQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	runs, err := s.history.List(r.Context(), q)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "run history is disabled")
		return
	}

	run, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run_not_found", err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func parseRunQuery(r *http.Request) (history.Query, error) {
	var q history.Query
	values := r.URL.Query()

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
		q.Limit = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid offset %q", v)
		}
		q.Offset = n
	}
	if v := values.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, fmt.Errorf("invalid since %q: must be RFC 3339", v)
		}
		q.Since = t
	}
	if v := values.Get("blocked"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid blocked %q", v)
		}
		q.BlockedOnly = b
	}
	return q, nil
}

// record saves a run when history is enabled. Failures are logged only.
func (s *Server) record(r *http.Request, report *engine.Report, in engine.Input, started time.Time) {
	if s.history == nil {
		return
	}
	sources := make(map[dataset.EntityType]string)
	for _, entity := range dataset.EntityTypes {
		if in.Rows(entity) != nil {
			sources[entity] = "http"
		}
	}
	run := history.NewRun(report, sources, started)
	if err := s.history.Save(r.Context(), run); err != nil {
		s.logger.WarnContext(r.Context(), "failed to record run", "error", err)
		return
	}
	tracing.SetRunAttribute(trace.SpanFromContext(r.Context()), run.ID)
	s.logger.DebugContext(logging.WithRunID(r.Context(), run.ID), "run recorded")
}

// sessionContext tags the request span with the session ID and returns a
// logging context carrying it.
func sessionContext(r *http.Request, id string) context.Context {
	tracing.SetSessionAttribute(trace.SpanFromContext(r.Context()), id)
	return logging.WithSessionID(r.Context(), id)
}

// decode reads a JSON body bounded by MaxBodyBytes. It writes the error
// response itself and reports whether decoding succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "invalid_request", "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		}
		return false
	}
	return true
}

func (s *Server) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownDiagnostic):
		writeError(w, http.StatusNotFound, "diagnostic_not_found", err.Error())
	case errors.Is(err, engine.ErrEntityNotLoaded), errors.Is(err, engine.ErrRowOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "invalid_edit", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred.")
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorBody{Code: errCode, Message: message}})
}
