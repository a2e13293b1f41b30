package diagnostics

import (
	"fmt"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Kind is the closed set of diagnostic kinds.
type Kind string

const (
	KindMissingData       Kind = "missing-data"
	KindMissingColumn     Kind = "missing-column"
	KindDuplicateID       Kind = "duplicate-id"
	KindOutOfRange        Kind = "out-of-range"
	KindMalformedList     Kind = "malformed-list"
	KindInvalidJSONString Kind = "invalid-json-string"
	KindBrokenJSON        Kind = "broken-json"
	KindInvalidJSONType   Kind = "invalid-json-type"
	KindUnknownReference  Kind = "unknown-reference"
	KindSkillCoverage     Kind = "skill-coverage"
	KindOverloadedWorker  Kind = "overloaded-worker"
	KindMaxConcurrency    Kind = "max-concurrency"
)

// Kinds lists every kind in taxonomy order.
var Kinds = []Kind{
	KindMissingData,
	KindMissingColumn,
	KindDuplicateID,
	KindOutOfRange,
	KindMalformedList,
	KindInvalidJSONString,
	KindBrokenJSON,
	KindInvalidJSONType,
	KindUnknownReference,
	KindSkillCoverage,
	KindOverloadedWorker,
	KindMaxConcurrency,
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Severity is either error (blocking) or warning (advisory).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SeverityOf returns the severity every diagnostic of the kind carries.
func SeverityOf(k Kind) Severity {
	switch k {
	case KindOverloadedWorker, KindMaxConcurrency:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Diagnostic is one addressable finding. The JSON shape is the wire format
// consumed by callers.
type Diagnostic struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"type"`
	Message    string             `json:"message"`
	Severity   Severity           `json:"severity"`
	Field      string             `json:"field,omitempty"`
	RowIndex   *int               `json:"rowIndex,omitempty"`
	EntityType dataset.EntityType `json:"entityType,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`

	// Detail carries the kind-specific payload. It is not part of the wire
	// format; diagnostics decoded from JSON have a nil Detail.
	Detail Detail `json:"-"`
}

// Row returns the row index, or -1 when the diagnostic is not row-scoped.
func (d Diagnostic) Row() int {
	if d.RowIndex == nil {
		return -1
	}
	return *d.RowIndex
}

// IsError reports whether the diagnostic blocks progression.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s", d.Severity, d.Kind, d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&sb, " (suggestion: %s)", d.Suggestion)
	}
	return sb.String()
}

// Row is a helper for building RowIndex values.
func Row(i int) *int {
	return &i
}

// MakeID builds the stable identifier of a diagnostic from its address.
// row < 0 omits the row segment; empty field or ref omit theirs.
func MakeID(entity dataset.EntityType, kind Kind, row int, field, ref string) string {
	parts := []string{string(entity), string(kind)}
	if row >= 0 {
		parts = append(parts, fmt.Sprint(row))
	}
	if field != "" {
		parts = append(parts, strings.ToLower(field))
	}
	if ref != "" {
		parts = append(parts, ref)
	}
	return strings.Join(parts, "-")
}

// New builds a diagnostic and derives its ID and severity.
func New(entity dataset.EntityType, kind Kind, row int, field, message string, detail Detail) Diagnostic {
	d := Diagnostic{
		ID:         MakeID(entity, kind, row, field, refOf(detail)),
		Kind:       kind,
		Message:    message,
		Severity:   SeverityOf(kind),
		Field:      field,
		EntityType: entity,
		Detail:     detail,
	}
	if row >= 0 {
		d.RowIndex = Row(row)
	}
	return d
}

// WithSuggestion returns a copy of d carrying the suggestion.
func (d Diagnostic) WithSuggestion(s string) Diagnostic {
	d.Suggestion = s
	return d
}

// refOf extracts the discriminator for kinds that can fire more than once
// for the same row and field.
func refOf(detail Detail) string {
	switch dt := detail.(type) {
	case DuplicateDetail:
		return dt.ID
	case ReferenceDetail:
		return dt.Ref
	case SkillDetail:
		return dt.Skill
	default:
		return ""
	}
}
