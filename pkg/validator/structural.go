package validator

import (
	"fmt"
	"sort"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// StructuralValidator checks record-set shape: non-empty, required columns
// present, and unique IDs.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Validate runs the structural checks for one entity set.
// An empty set yields a single missing-data diagnostic and nothing else.
func (v *StructuralValidator) Validate(records []dataset.Record, schema dataset.Schema) []diagnostics.Diagnostic {
	diags := diagnostics.NewList()

	if len(records) == 0 {
		diags.AddWithSuggestion(
			schema.Entity,
			diagnostics.KindMissingData,
			-1, "",
			fmt.Sprintf("No %s data found", schema.Entity),
			fmt.Sprintf("Upload %s data with at least one row", schema.Entity),
			diagnostics.MissingDataDetail{},
		)
		return diags.Items
	}

	v.validateColumns(diags, records[0], schema)
	v.validateUniqueIDs(diags, records, schema)

	return diags.Items
}

// validateColumns checks the required columns against the first row's keys.
func (v *StructuralValidator) validateColumns(diags *diagnostics.List, first dataset.Record, schema dataset.Schema) {
	meta := first.Meta()
	unknown := unknownHeaders(meta, schema)

	for _, col := range schema.Required() {
		if meta.Has(col) {
			continue
		}
		closest := diagnostics.ClosestColumn(col, unknown)
		diags.AddWithSuggestion(
			schema.Entity,
			diagnostics.KindMissingColumn,
			-1, col,
			fmt.Sprintf("Missing required column '%s' in %s data", col, schema.Entity),
			diagnostics.MissingColumnSuggestion(col, closest),
			diagnostics.MissingColumnDetail{Column: col, Closest: closest},
		)
	}
}

// validateUniqueIDs emits one duplicate-id diagnostic per occurrence of a
// repeated ID. Empty IDs are skipped.
func (v *StructuralValidator) validateUniqueIDs(diags *diagnostics.List, records []dataset.Record, schema dataset.Schema) {
	rowsByID := make(map[string][]int)
	var order []string
	for _, r := range records {
		id := r.ID()
		if id == "" {
			continue
		}
		if _, seen := rowsByID[id]; !seen {
			order = append(order, id)
		}
		rowsByID[id] = append(rowsByID[id], r.Meta().Index)
	}

	// Report in row order of the first occurrence.
	for _, id := range order {
		rows := rowsByID[id]
		if len(rows) < 2 {
			continue
		}
		for _, row := range rows {
			diags.AddWithSuggestion(
				schema.Entity,
				diagnostics.KindDuplicateID,
				row, schema.IDField,
				fmt.Sprintf("Duplicate %s '%s' found in row %d", schema.IDField, id, row+1),
				fmt.Sprintf("Ensure each %s is unique (also used in rows %s)", schema.IDField, otherRows(rows, row)),
				diagnostics.DuplicateDetail{ID: id, Rows: append([]int(nil), rows...)},
			)
		}
	}
}

func unknownHeaders(meta dataset.RowMeta, schema dataset.Schema) []string {
	var out []string
	for key := range meta.Present {
		if _, known := schema.Field(key); !known {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func otherRows(rows []int, self int) string {
	s := ""
	for _, r := range rows {
		if r == self {
			continue
		}
		if s != "" {
			s += ", "
		}
		s += fmt.Sprint(r + 1)
	}
	return s
}
