package validator

import (
	"errors"
	"fmt"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// ErrIncompleteEntitySet is returned when the cross-entity pass is invoked
// without all three normalized entity sets.
var ErrIncompleteEntitySet = errors.New("validator: consistency check requires clients, workers and tasks")

// EntitySets holds the three normalized sets. A nil slice means the set was
// never supplied; an empty non-nil slice is a supplied but empty set.
type EntitySets struct {
	Clients []dataset.Client
	Workers []dataset.Worker
	Tasks   []dataset.Task
}

// Complete reports whether all three sets were supplied.
func (s EntitySets) Complete() bool {
	return s.Clients != nil && s.Workers != nil && s.Tasks != nil
}

// Check is one cross-entity pass. Checks are read-only over the sets.
type Check interface {
	Name() string
	Run(sets EntitySets) []diagnostics.Diagnostic
}

// ConsistencyValidator runs the cross-entity checks in registration order.
type ConsistencyValidator struct {
	checks []Check
}

// DefaultChecks returns the built-in cross-entity checks in order.
func DefaultChecks() []Check {
	return []Check{
		ReferenceCheck{},
		SkillCoverageCheck{},
		ConcurrencyCheck{},
		OverloadCheck{},
		PhaseSaturationCheck{},
		CoRunCheck{},
	}
}

// NewConsistencyValidator creates a validator with the default checks
// followed by any extra checks.
func NewConsistencyValidator(extra ...Check) *ConsistencyValidator {
	return &ConsistencyValidator{checks: append(DefaultChecks(), extra...)}
}

// Checks returns the names of the registered checks.
func (v *ConsistencyValidator) Checks() []string {
	names := make([]string, len(v.checks))
	for i, c := range v.checks {
		names[i] = c.Name()
	}
	return names
}

// Validate runs every check. It fails fast with ErrIncompleteEntitySet
// when a set is missing.
func (v *ConsistencyValidator) Validate(sets EntitySets) ([]diagnostics.Diagnostic, error) {
	if !sets.Complete() {
		return nil, ErrIncompleteEntitySet
	}

	diags := diagnostics.NewList()
	for _, c := range v.checks {
		diags.Extend(c.Run(sets))
	}
	return diags.Items, nil
}

// ReferenceCheck verifies every requested task ID resolves to a task.
type ReferenceCheck struct{}

func (ReferenceCheck) Name() string { return "referential-integrity" }

func (ReferenceCheck) Run(sets EntitySets) []diagnostics.Diagnostic {
	taskIDs := make(map[string]bool, len(sets.Tasks))
	for _, t := range sets.Tasks {
		taskIDs[t.TaskID] = true
	}

	diags := diagnostics.NewList()
	for _, c := range sets.Clients {
		seen := make(map[string]bool)
		for _, ref := range c.RequestedTaskIDs.Items {
			if taskIDs[ref] || seen[ref] {
				continue
			}
			seen[ref] = true
			diags.AddWithSuggestion(dataset.Clients, diagnostics.KindUnknownReference,
				c.Index, dataset.FieldRequestedTaskIDs,
				fmt.Sprintf("Client '%s' in row %d references unknown task '%s'", label(c), c.Index+1, ref),
				fmt.Sprintf("Remove '%s' or add corresponding task to tasks data", ref),
				diagnostics.ReferenceDetail{Ref: ref})
		}
	}
	return diags.Items
}

// SkillCoverageCheck verifies every required skill is held by some worker.
type SkillCoverageCheck struct{}

func (SkillCoverageCheck) Name() string { return "skill-coverage" }

func (SkillCoverageCheck) Run(sets EntitySets) []diagnostics.Diagnostic {
	skills := make(map[string]bool)
	for _, w := range sets.Workers {
		for _, s := range w.Skills.Items {
			skills[s] = true
		}
	}

	diags := diagnostics.NewList()
	for _, t := range sets.Tasks {
		seen := make(map[string]bool)
		for _, s := range t.RequiredSkills.Items {
			if skills[s] || seen[s] {
				continue
			}
			seen[s] = true
			diags.AddWithSuggestion(dataset.Tasks, diagnostics.KindSkillCoverage,
				t.Index, dataset.FieldRequiredSkills,
				fmt.Sprintf("Task '%s' in row %d requires skill '%s' that no worker has", label(t), t.Index+1, s),
				fmt.Sprintf("Add skill '%s' to at least one worker or remove from task requirements", s),
				diagnostics.SkillDetail{Skill: s})
		}
	}
	return diags.Items
}

// ConcurrencyCheck warns when fewer workers hold a task's full skill set
// than the task's MaxConcurrent.
type ConcurrencyCheck struct{}

func (ConcurrencyCheck) Name() string { return "concurrency-feasibility" }

func (ConcurrencyCheck) Run(sets EntitySets) []diagnostics.Diagnostic {
	diags := diagnostics.NewList()
	for _, t := range sets.Tasks {
		if t.MaxConcurrent < 1 {
			continue
		}
		qualified := 0
		for _, w := range sets.Workers {
			if w.HasAllSkills(t.RequiredSkills.Items) {
				qualified++
			}
		}
		if qualified >= t.MaxConcurrent {
			continue
		}

		suggestion := fmt.Sprintf("Reduce MaxConcurrent to %d or add more qualified workers", qualified)
		if qualified == 0 {
			suggestion = "Add workers holding all required skills of this task"
		}
		diags.AddWithSuggestion(dataset.Tasks, diagnostics.KindMaxConcurrency,
			t.Index, dataset.FieldMaxConcurrent,
			fmt.Sprintf("Task '%s' has MaxConcurrent (%d) > qualified workers (%d)", label(t), t.MaxConcurrent, qualified),
			suggestion,
			diagnostics.ConcurrencyDetail{Qualified: qualified, MaxConcurrent: t.MaxConcurrent})
	}
	return diags.Items
}

// OverloadCheck warns when a worker's MaxLoadPerPhase exceeds its slot count.
// Rows without an AvailableSlots cell are left to the structural pass.
type OverloadCheck struct{}

func (OverloadCheck) Name() string { return "worker-overload" }

func (OverloadCheck) Run(sets EntitySets) []diagnostics.Diagnostic {
	diags := diagnostics.NewList()
	for _, w := range sets.Workers {
		if !w.Has(dataset.FieldAvailableSlots) {
			continue
		}
		slots := w.AvailableSlots.Len()
		if slots >= w.MaxLoadPerPhase {
			continue
		}
		diags.AddWithSuggestion(dataset.Workers, diagnostics.KindOverloadedWorker,
			w.Index, dataset.FieldMaxLoadPerPhase,
			fmt.Sprintf("Worker '%s' has MaxLoadPerPhase (%d) > AvailableSlots (%d)", label(w), w.MaxLoadPerPhase, slots),
			fmt.Sprintf("Reduce MaxLoadPerPhase to %d or increase AvailableSlots", slots),
			diagnostics.OverloadDetail{Slots: slots, MaxLoad: w.MaxLoadPerPhase})
	}
	return diags.Items
}

// PhaseSaturationCheck is the extension point for per-phase capacity
// accounting. It needs phase assignments, which are not part of the three
// entity sets, so it reports nothing.
type PhaseSaturationCheck struct{}

func (PhaseSaturationCheck) Name() string                            { return "phase-saturation" }
func (PhaseSaturationCheck) Run(EntitySets) []diagnostics.Diagnostic { return nil }

// CoRunCheck is the extension point for cycle detection among co-run
// groups. Co-run groups come from rule definitions, so it reports nothing.
type CoRunCheck struct{}

func (CoRunCheck) Name() string                            { return "co-run-cycles" }
func (CoRunCheck) Run(EntitySets) []diagnostics.Diagnostic { return nil }

func label(r dataset.Record) string {
	if id := r.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("row %d", r.Meta().Index+1)
}
