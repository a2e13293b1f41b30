package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// RuleValidator checks per-field format and range rules row by row.
// The checks are driven entirely by the schema's field table.
type RuleValidator struct{}

// NewRuleValidator creates a new entity rule validator.
func NewRuleValidator() *RuleValidator {
	return &RuleValidator{}
}

// Validate runs the field rules for every record of one entity set.
// Fields absent from a row are skipped; missing columns are structural.
func (v *RuleValidator) Validate(records []dataset.Record, schema dataset.Schema) []diagnostics.Diagnostic {
	diags := diagnostics.NewList()

	for _, r := range records {
		meta := r.Meta()
		for _, field := range schema.Fields {
			if !meta.Has(field.Name) {
				continue
			}
			switch field.Class {
			case dataset.ClassInteger:
				v.checkRange(diags, r, schema.Entity, field)
			case dataset.ClassIntList:
				v.checkIntList(diags, r, schema.Entity, field)
			case dataset.ClassStringList:
				v.checkStringList(diags, r, schema.Entity, field)
			case dataset.ClassJSON:
				if value, ok := r.JSON(field.Name); ok {
					if d, found := ClassifyJSON(schema.Entity, meta.Index, field.Name, value); found {
						diags.Add(d)
					}
				}
			case dataset.ClassString:
				// Free text; no rule applies.
			}
		}
	}

	return diags.Items
}

// checkRange flags integer cells that are outside the field's domain or
// that did not coerce cleanly to a whole number.
func (v *RuleValidator) checkRange(diags *diagnostics.List, r dataset.Record, entity dataset.EntityType, field dataset.FieldSpec) {
	if !field.HasRange {
		return
	}
	n, ok := r.Int(field.Name)
	if !ok {
		return
	}
	raw, unclean := r.Meta().UncleanInt(field.Name)
	if !unclean && field.InRange(n) {
		return
	}

	shown := strconv.Itoa(n)
	detail := diagnostics.RangeDetail{Value: n, Min: field.Min, Max: field.Max}
	if unclean {
		shown = raw.Text()
		detail.Raw = shown
	}

	row := r.Meta().Index
	var msg, suggestion string
	if field.Max == dataset.Unbounded {
		msg = fmt.Sprintf("%s '%s' in row %d must be an integer of at least %d", field.Name, shown, row+1, field.Min)
		suggestion = fmt.Sprintf("Set %s to %d or higher", field.Name, field.Min)
		if unclean {
			suggestion = fmt.Sprintf("Set %s to %d", field.Name, field.Clamp(n))
		}
	} else {
		msg = fmt.Sprintf("%s '%s' in row %d must be an integer between %d-%d", field.Name, shown, row+1, field.Min, field.Max)
		suggestion = fmt.Sprintf("Set %s to %d", field.Name, field.Clamp(n))
	}

	diags.AddWithSuggestion(entity, diagnostics.KindOutOfRange, row, field.Name, msg, suggestion, detail)
}

func (v *RuleValidator) checkIntList(diags *diagnostics.List, r dataset.Record, entity dataset.EntityType, field dataset.FieldSpec) {
	list, ok := r.IntList(field.Name)
	if !ok {
		return
	}

	rejected := list.Rejected
	if field.Elem == dataset.ElemPositiveInt {
		for _, n := range list.Items {
			if n < 1 {
				rejected = append(rejected, dataset.Number(float64(n)))
			}
		}
	}
	if len(rejected) == 0 {
		return
	}

	row := r.Meta().Index
	var msg, suggestion string
	switch field.Elem {
	case dataset.ElemPositiveInt:
		msg = fmt.Sprintf("%s in row %d contains invalid phase numbers: %s", field.Name, row+1, renderValues(rejected))
		suggestion = fmt.Sprintf("Ensure %s contains only positive integers, e.g. [1,2,3] or 1-3", field.Name)
	default:
		msg = fmt.Sprintf("%s in row %d contains non-numeric values: %s", field.Name, row+1, renderValues(rejected))
		suggestion = fmt.Sprintf("Ensure %s contains only numeric phase numbers", field.Name)
	}

	diags.AddWithSuggestion(entity, diagnostics.KindMalformedList, row, field.Name, msg, suggestion,
		diagnostics.ListDetail{Rejected: rejected})
}

func (v *RuleValidator) checkStringList(diags *diagnostics.List, r dataset.Record, entity dataset.EntityType, field dataset.FieldSpec) {
	if field.Elem != dataset.ElemScalar {
		return
	}
	list, ok := r.StringList(field.Name)
	if !ok || len(list.Rejected) == 0 {
		return
	}

	row := r.Meta().Index
	diags.AddWithSuggestion(entity, diagnostics.KindMalformedList, row, field.Name,
		fmt.Sprintf("%s in row %d contains invalid entries: %s", field.Name, row+1, renderValues(list.Rejected)),
		fmt.Sprintf("Ensure %s contains only strings or numbers", field.Name),
		diagnostics.ListDetail{Rejected: list.Rejected})
}

func renderValues(vs []dataset.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Text()
		if v.Kind == dataset.KindString {
			parts[i] = fmt.Sprintf("%q", v.Str)
		}
		if v.Kind == dataset.KindNull {
			parts[i] = "null"
		}
	}
	return strings.Join(parts, ", ")
}
