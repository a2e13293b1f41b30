package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
)

// Run is one recorded validation.
type Run struct {
	ID          string                        `json:"id"`
	StartedAt   time.Time                     `json:"startedAt"`
	Duration    time.Duration                 `json:"durationNs"`
	Sources     map[dataset.EntityType]string `json:"sources,omitempty"`
	Errors      int                           `json:"errors"`
	Warnings    int                           `json:"warnings"`
	CanProceed  bool                          `json:"canProceed"`
	Diagnostics []diagnostics.Diagnostic      `json:"diagnostics"`
}

// NewRun builds a Run with a fresh ID from a finished report. sources maps
// each entity set to where it was read from (a file path or "http").
func NewRun(report *engine.Report, sources map[dataset.EntityType]string, startedAt time.Time) *Run {
	ds := report.Diagnostics
	if ds == nil {
		ds = []diagnostics.Diagnostic{}
	}
	return &Run{
		ID:          uuid.NewString(),
		StartedAt:   startedAt.UTC(),
		Duration:    report.Duration,
		Sources:     sources,
		Errors:      report.Summary.Errors,
		Warnings:    report.Summary.Warnings,
		CanProceed:  report.CanProceed,
		Diagnostics: ds,
	}
}

// Query filters List. Runs are always returned newest first.
type Query struct {
	// Since excludes runs started before this time.
	Since time.Time

	// BlockedOnly keeps runs that could not proceed.
	BlockedOnly bool

	// Limit caps the result. 0 means DefaultListLimit.
	Limit int

	Offset int
}

// DefaultListLimit applies when Query.Limit is zero.
const DefaultListLimit = 50

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

func (q Query) matches(r *Run) bool {
	if !q.Since.IsZero() && r.StartedAt.Before(q.Since) {
		return false
	}
	if q.BlockedOnly && r.CanProceed {
		return false
	}
	return true
}

func (r *Run) clone() *Run {
	cp := *r
	if r.Sources != nil {
		cp.Sources = make(map[dataset.EntityType]string, len(r.Sources))
		for k, v := range r.Sources {
			cp.Sources[k] = v
		}
	}
	cp.Diagnostics = append([]diagnostics.Diagnostic(nil), r.Diagnostics...)
	return &cp
}
