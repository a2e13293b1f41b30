package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
)

// IsPlainString reports whether s cannot be the start of a JSON document:
// it neither opens with {, [, " or ' nor closes with the matching character.
func IsPlainString(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}, {'"', '"'}, {'\'', '\''}} {
		if t[0] == pair[0] || t[len(t)-1] == pair[1] {
			return false
		}
	}
	return true
}

// ClassifyJSON inspects a free-form JSON field. Objects, arrays, null and
// parseable strings are valid. It returns false when no diagnostic applies.
func ClassifyJSON(entity dataset.EntityType, row int, field string, value dataset.Value) (diagnostics.Diagnostic, bool) {
	switch value.Kind {
	case dataset.KindObject, dataset.KindArray, dataset.KindNull:
		return diagnostics.Diagnostic{}, false
	case dataset.KindNumber, dataset.KindBool:
		return diagnostics.New(entity, diagnostics.KindInvalidJSONType, row, field,
			fmt.Sprintf("%s in row %d must be a JSON object or string, got %s", field, row+1, value.Kind),
			diagnostics.JSONDetail{Raw: value.Text(), ValueKind: value.Kind},
		).WithSuggestion(fmt.Sprintf(`Use a JSON object such as {"value":%s}`, value.Text())), true
	}

	raw := value.Str
	if strings.TrimSpace(raw) == "" {
		return diagnostics.Diagnostic{}, false
	}

	if IsPlainString(raw) {
		return diagnostics.New(entity, diagnostics.KindInvalidJSONString, row, field,
			fmt.Sprintf("%s in row %d contains plain text '%s' instead of JSON", field, row+1, raw),
			diagnostics.JSONDetail{Raw: raw, ValueKind: dataset.KindString},
		).WithSuggestion(diagnostics.PlainStringSuggestion(raw)), true
	}

	var parsed any
	err := json.Unmarshal([]byte(raw), &parsed)
	if err == nil {
		return diagnostics.Diagnostic{}, false
	}

	return diagnostics.New(entity, diagnostics.KindBrokenJSON, row, field,
		fmt.Sprintf("%s in row %d contains invalid JSON: %v", field, row+1, err),
		diagnostics.JSONDetail{Raw: raw, ParseError: err.Error(), ValueKind: dataset.KindString},
	).WithSuggestion(diagnostics.BrokenJSONSuggestion(raw, err.Error())), true
}
