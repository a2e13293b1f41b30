package validator

import (
	"fmt"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// Validator bundles the three validation passes.
// It holds no per-run state and is safe for concurrent use.
type Validator struct {
	structural  *StructuralValidator
	rules       *RuleValidator
	consistency *ConsistencyValidator
}

// NewValidator creates a validator with the default consistency checks
// plus any extra checks.
func NewValidator(extra ...Check) *Validator {
	return &Validator{
		structural:  NewStructuralValidator(),
		rules:       NewRuleValidator(),
		consistency: NewConsistencyValidator(extra...),
	}
}

// ValidateEntity runs the structural and rule passes for one entity set.
// Structural diagnostics come first, then rule diagnostics.
func (v *Validator) ValidateEntity(entity dataset.EntityType, records []dataset.Record) ([]diagnostics.Diagnostic, error) {
	schema, err := dataset.SchemaFor(entity)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", entity, err)
	}

	diags := diagnostics.NewList()
	diags.Extend(v.ValidateStructural(records, schema))

	// An empty set short-circuits field checks.
	if diags.HasKind(diagnostics.KindMissingData) {
		return diags.Items, nil
	}

	diags.Extend(v.ValidateRules(records, schema))
	return diags.Items, nil
}

// ValidateStructural runs only the structural pass.
func (v *Validator) ValidateStructural(records []dataset.Record, schema dataset.Schema) []diagnostics.Diagnostic {
	return v.structural.Validate(records, schema)
}

// ValidateRules runs only the entity rule pass.
func (v *Validator) ValidateRules(records []dataset.Record, schema dataset.Schema) []diagnostics.Diagnostic {
	return v.rules.Validate(records, schema)
}

// ValidateConsistency runs the cross-entity pass.
func (v *Validator) ValidateConsistency(sets EntitySets) ([]diagnostics.Diagnostic, error) {
	return v.consistency.Validate(sets)
}

// ConsistencyChecks returns the names of the registered cross-entity checks.
func (v *Validator) ConsistencyChecks() []string {
	return v.consistency.Checks()
}
