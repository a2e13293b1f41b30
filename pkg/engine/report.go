package engine

import (
	"time"

	"github.com/Mahi3005/data-alchemist/pkg/autofix"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// Report is the outcome of one validation run.
type Report struct {
	// Diagnostics is the flat, order-stable list: each entity's structural
	// and rule findings in entity order, followed by cross-entity findings.
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`

	// Present records which entity sets were supplied.
	Present map[dataset.EntityType]bool `json:"present"`

	// CanProceed is true when all three sets are present and no diagnostic
	// has error severity.
	CanProceed bool `json:"canProceed"`

	Summary  Summary       `json:"summary"`
	Duration time.Duration `json:"durationNs"`
}

// Summary counts diagnostics by severity, entity and kind.
type Summary struct {
	Errors   int                                `json:"errors"`
	Warnings int                                `json:"warnings"`
	ByEntity map[dataset.EntityType]EntityCount `json:"byEntity"`
	ByKind   map[diagnostics.Kind]int           `json:"byKind"`
	Fixable  int                                `json:"fixable"`
}

// EntityCount is the per-entity part of a Summary.
type EntityCount struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

func newReport(present map[dataset.EntityType]bool, local map[dataset.EntityType][]diagnostics.Diagnostic, cross []diagnostics.Diagnostic) *Report {
	all := make([]diagnostics.Diagnostic, 0)
	for _, entity := range dataset.EntityTypes {
		all = append(all, local[entity]...)
	}
	all = append(all, cross...)

	r := &Report{
		Diagnostics: all,
		Present:     present,
		Summary:     summarize(all),
	}
	r.CanProceed = CanProceed(present, all)
	return r
}

// CanProceed is the downstream gate: all three entity sets present and
// zero error-severity diagnostics. Warnings do not block.
func CanProceed(present map[dataset.EntityType]bool, ds []diagnostics.Diagnostic) bool {
	for _, entity := range dataset.EntityTypes {
		if !present[entity] {
			return false
		}
	}
	return diagnostics.CountSeverity(ds, diagnostics.SeverityError) == 0
}

// Bucket returns the diagnostics owned by one entity set, including
// cross-entity findings routed to it.
func (r *Report) Bucket(entity dataset.EntityType) []diagnostics.Diagnostic {
	return diagnostics.ForEntity(r.Diagnostics, entity)
}

// Errors returns the error-severity diagnostics.
func (r *Report) Errors() []diagnostics.Diagnostic {
	return bySeverity(r.Diagnostics, diagnostics.SeverityError)
}

// Warnings returns the warning-severity diagnostics.
func (r *Report) Warnings() []diagnostics.Diagnostic {
	return bySeverity(r.Diagnostics, diagnostics.SeverityWarning)
}

func bySeverity(ds []diagnostics.Diagnostic, s diagnostics.Severity) []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	for _, d := range ds {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

func summarize(ds []diagnostics.Diagnostic) Summary {
	s := Summary{
		ByEntity: make(map[dataset.EntityType]EntityCount),
		ByKind:   make(map[diagnostics.Kind]int),
	}
	for _, d := range ds {
		c := s.ByEntity[d.EntityType]
		if d.IsError() {
			s.Errors++
			c.Errors++
		} else {
			s.Warnings++
			c.Warnings++
		}
		s.ByEntity[d.EntityType] = c
		s.ByKind[d.Kind]++
		if autofix.Fixable(d) {
			s.Fixable++
		}
	}
	return s
}
