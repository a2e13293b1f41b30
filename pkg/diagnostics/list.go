package diagnostics

import (
	"fmt"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// List accumulates diagnostics in the order they were found.
// Validators never stop at the first finding; they collect into a List.
type List struct {
	Items []Diagnostic
}

// NewList creates an empty list.
func NewList() *List {
	return &List{Items: make([]Diagnostic, 0)}
}

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	l.Items = append(l.Items, d)
}

// AddWithSuggestion builds a diagnostic with New and appends it.
func (l *List) AddWithSuggestion(entity dataset.EntityType, kind Kind, row int, field, message, suggestion string, detail Detail) {
	l.Add(New(entity, kind, row, field, message, detail).WithSuggestion(suggestion))
}

// Extend appends every diagnostic in ds.
func (l *List) Extend(ds []Diagnostic) {
	l.Items = append(l.Items, ds...)
}

// Len returns the number of diagnostics.
func (l *List) Len() int {
	return len(l.Items)
}

// HasErrors reports whether any diagnostic has error severity.
func (l *List) HasErrors() bool {
	return CountSeverity(l.Items, SeverityError) > 0
}

// HasKind reports whether the list contains a diagnostic of the kind.
func (l *List) HasKind(k Kind) bool {
	for _, d := range l.Items {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// ByKind returns every diagnostic of the kind.
func (l *List) ByKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.Items {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Error renders the list the way a CLI would print it.
func (l *List) Error() string {
	if l.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d diagnostic(s):\n", l.Len())
	for _, d := range l.Items {
		sb.WriteString("  ")
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// CountSeverity counts diagnostics of the given severity.
func CountSeverity(ds []Diagnostic, s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// ForEntity filters diagnostics owned by the entity type.
func ForEntity(ds []Diagnostic, entity dataset.EntityType) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.EntityType == entity {
			out = append(out, d)
		}
	}
	return out
}

// Find returns the diagnostic with the given ID.
func Find(ds []Diagnostic, id string) (Diagnostic, bool) {
	for _, d := range ds {
		if d.ID == id {
			return d, true
		}
	}
	return Diagnostic{}, false
}
