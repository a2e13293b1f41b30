// Package autofix produces corrected rows for the fixable subset of
// diagnostics. Every fix touches one field of one row, never mutates its
// input, and is idempotent.
package autofix

import (
	"encoding/json"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/normalize"
)

// Fixable reports whether Fix has a remedy for the diagnostic's kind and field.
func Fixable(d diagnostics.Diagnostic) bool {
	switch d.Kind {
	case diagnostics.KindInvalidJSONString:
		return d.Field == dataset.FieldAttributesJSON
	case diagnostics.KindOutOfRange:
		return d.Field == dataset.FieldPriorityLevel || d.Field == dataset.FieldQualificationLevel
	case diagnostics.KindMalformedList:
		return d.Field == dataset.FieldAvailableSlots
	case diagnostics.KindMissingData,
		diagnostics.KindMissingColumn,
		diagnostics.KindDuplicateID,
		diagnostics.KindBrokenJSON,
		diagnostics.KindInvalidJSONType,
		diagnostics.KindUnknownReference,
		diagnostics.KindSkillCoverage,
		diagnostics.KindOverloadedWorker,
		diagnostics.KindMaxConcurrency:
		return false
	default:
		return false
	}
}

// Fix applies the remedy for d to a copy of record. It returns the record
// unchanged and false when no remedy applies.
func Fix(record dataset.RawRecord, d diagnostics.Diagnostic) (dataset.RawRecord, bool) {
	switch d.Kind {
	case diagnostics.KindInvalidJSONString:
		return fixPlainJSON(record, d.Field)
	case diagnostics.KindOutOfRange:
		return fixRange(record, d.Field)
	case diagnostics.KindMalformedList:
		return fixSlots(record, d.Field)
	case diagnostics.KindMissingData,
		diagnostics.KindMissingColumn,
		diagnostics.KindDuplicateID,
		diagnostics.KindBrokenJSON,
		diagnostics.KindInvalidJSONType,
		diagnostics.KindUnknownReference,
		diagnostics.KindSkillCoverage,
		diagnostics.KindOverloadedWorker,
		diagnostics.KindMaxConcurrency:
		return record, false
	default:
		return record, false
	}
}

// fixPlainJSON wraps a string that does not parse as JSON into {"value": s}.
func fixPlainJSON(record dataset.RawRecord, field string) (dataset.RawRecord, bool) {
	if field != dataset.FieldAttributesJSON {
		return record, false
	}
	current, ok := record[field]
	if !ok || current.Kind != dataset.KindString {
		return record, false
	}
	var parsed any
	if json.Unmarshal([]byte(current.Str), &parsed) == nil {
		return record, false
	}

	out := record.Clone()
	out[field] = dataset.Object(map[string]dataset.Value{"value": dataset.String(current.Str)})
	return out, true
}

// fixRange clamps PriorityLevel and QualificationLevel into their domain.
// Integer saturates, so huge inputs land on the upper bound and fractions
// are truncated before clamping.
func fixRange(record dataset.RawRecord, field string) (dataset.RawRecord, bool) {
	var spec dataset.FieldSpec
	switch field {
	case dataset.FieldPriorityLevel:
		spec, _ = dataset.MustSchema(dataset.Clients).Field(field)
	case dataset.FieldQualificationLevel:
		spec, _ = dataset.MustSchema(dataset.Workers).Field(field)
	default:
		return record, false
	}

	current, ok := record[field]
	if !ok {
		return record, false
	}
	clamped := spec.Clamp(normalize.Integer(current))
	if current.Kind == dataset.KindNumber && current.Num == float64(clamped) {
		return record, false
	}

	out := record.Clone()
	out[field] = dataset.Number(float64(clamped))
	return out, true
}

// fixSlots converts a raw string AvailableSlots cell into an integer array.
func fixSlots(record dataset.RawRecord, field string) (dataset.RawRecord, bool) {
	if field != dataset.FieldAvailableSlots {
		return record, false
	}
	current, ok := record[field]
	if !ok || current.Kind != dataset.KindString {
		return record, false
	}

	list := normalize.ParseIntList(current.Str)
	if len(list.Items) == 0 && len(list.Rejected) > 0 {
		return record, false
	}

	out := record.Clone()
	out[field] = dataset.Ints(list.Items...)
	return out, true
}

// Result reports one applied fix.
type Result struct {
	DiagnosticID string
	Row          int
	Field        string
}

// FixAll applies every fixable diagnostic of the entity to a copy of rows,
// in diagnostic order. Diagnostics for other entities or rows out of range
// are ignored.
func FixAll(entity dataset.EntityType, rows []dataset.RawRecord, diags []diagnostics.Diagnostic) ([]dataset.RawRecord, []Result) {
	out := dataset.CloneRows(rows)
	var applied []Result
	for _, d := range diags {
		if d.EntityType != entity || !Fixable(d) {
			continue
		}
		row := d.Row()
		if row < 0 || row >= len(out) {
			continue
		}
		fixed, ok := Fix(out[row], d)
		if !ok {
			continue
		}
		out[row] = fixed
		applied = append(applied, Result{DiagnosticID: d.ID, Row: row, Field: d.Field})
	}
	return out, applied
}
