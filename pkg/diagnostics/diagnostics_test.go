package diagnostics

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

func TestMakeID(t *testing.T) {
	tests := []struct {
		name   string
		entity dataset.EntityType
		kind   Kind
		row    int
		field  string
		ref    string
		want   string
	}{
		{"entity scoped", dataset.Clients, KindMissingData, -1, "", "", "clients-missing-data"},
		{"column scoped", dataset.Workers, KindMissingColumn, -1, "Skills", "", "workers-missing-column-skills"},
		{"row and field", dataset.Clients, KindOutOfRange, 0, "PriorityLevel", "", "clients-out-of-range-0-prioritylevel"},
		{"with ref", dataset.Clients, KindUnknownReference, 2, "RequestedTaskIDs", "T9", "clients-unknown-reference-2-requestedtaskids-T9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeID(tt.entity, tt.kind, tt.row, tt.field, tt.ref); got != tt.want {
				t.Errorf("MakeID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_DerivesSeverityAndRef(t *testing.T) {
	d := New(dataset.Tasks, KindSkillCoverage, 1, dataset.FieldRequiredSkills, "msg", SkillDetail{Skill: "rust"})
	if d.Severity != SeverityError {
		t.Errorf("Severity = %s, want error", d.Severity)
	}
	if d.ID != "tasks-skill-coverage-1-requiredskills-rust" {
		t.Errorf("ID = %q", d.ID)
	}
	if d.Row() != 1 {
		t.Errorf("Row() = %d, want 1", d.Row())
	}

	w := New(dataset.Workers, KindOverloadedWorker, 0, dataset.FieldMaxLoadPerPhase, "msg", OverloadDetail{Slots: 2, MaxLoad: 3})
	if w.Severity != SeverityWarning || w.IsError() {
		t.Errorf("overloaded-worker should be a warning, got %s", w.Severity)
	}
}

func TestDiagnostic_WireFormat(t *testing.T) {
	d := New(dataset.Clients, KindOutOfRange, 0, dataset.FieldPriorityLevel, "bad", RangeDetail{Value: 7, Min: 1, Max: 5}).
		WithSuggestion("Set PriorityLevel to 5")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"id", "type", "message", "severity", "field", "rowIndex", "entityType", "suggestion"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("wire format missing %q: %s", key, data)
		}
	}
	if _, ok := wire["Detail"]; ok {
		t.Error("detail must not leak into the wire format")
	}

	entityScoped := New(dataset.Tasks, KindMissingData, -1, "", "none", MissingDataDetail{})
	data, _ = json.Marshal(entityScoped)
	if strings.Contains(string(data), "rowIndex") || strings.Contains(string(data), "field") {
		t.Errorf("optional keys should be omitted: %s", data)
	}
}

func TestList(t *testing.T) {
	l := NewList()
	l.Add(New(dataset.Workers, KindOverloadedWorker, 0, "", "w", nil))
	if l.HasErrors() {
		t.Error("warnings alone should not count as errors")
	}
	l.AddWithSuggestion(dataset.Clients, KindDuplicateID, 1, dataset.FieldClientID, "dup", "fix it", DuplicateDetail{ID: "C1"})

	if !l.HasErrors() || !l.HasKind(KindDuplicateID) {
		t.Error("expected duplicate-id error")
	}
	if got := len(l.ByKind(KindOverloadedWorker)); got != 1 {
		t.Errorf("ByKind() = %d, want 1", got)
	}
	if got := len(ForEntity(l.Items, dataset.Clients)); got != 1 {
		t.Errorf("ForEntity() = %d, want 1", got)
	}
	if _, ok := Find(l.Items, "clients-duplicate-id-1-clientid-C1"); !ok {
		t.Error("Find() did not locate diagnostic by ID")
	}
	if !strings.Contains(l.Error(), "found 2 diagnostic(s)") {
		t.Errorf("Error() = %q", l.Error())
	}
}

func TestClosestColumn(t *testing.T) {
	tests := []struct {
		name    string
		column  string
		headers []string
		want    string
	}{
		{"spaced header", "PriorityLevel", []string{"Priority Level", "Name"}, "Priority Level"},
		{"typo", "WorkerGroup", []string{"WorkrGroup"}, "WorkrGroup"},
		{"case only", "Skills", []string{"skills"}, "skills"},
		{"nothing close", "AttributesJSON", []string{"Foo"}, ""},
		{"no headers", "TaskID", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClosestColumn(tt.column, tt.headers); got != tt.want {
				t.Errorf("ClosestColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrokenJSONSuggestion(t *testing.T) {
	tests := []struct {
		raw      string
		parseErr string
		want     string
	}{
		{"{bad json", "", "closing brace '}'"},
		{"[1, 2", "", "closing bracket ']'"},
		{"{'a': 1}", "", "double quotes"},
		{"{\"a\": {\"b\": 1}", "", "Mismatched curly braces"},
		{"{\"a\": {}}}", "", "Mismatched curly braces"},
		{"{\"a\": [1]]}", "", "Mismatched square brackets"},
		{"{\"a\" 1}", "invalid character '1' after object key", "missing commas or colons"},
		{"{\"a\": tru}", "invalid character '}' in literal true", "Fix JSON syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := BrokenJSONSuggestion(tt.raw, tt.parseErr); !strings.Contains(got, tt.want) {
				t.Errorf("BrokenJSONSuggestion(%q) = %q, want it to mention %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPlainStringSuggestion(t *testing.T) {
	got := PlainStringSuggestion("T33")
	if !strings.Contains(got, `"T33"`) || !strings.Contains(got, `{"value":"T33"}`) {
		t.Errorf("PlainStringSuggestion() = %q", got)
	}
}

func TestKindsClosedSet(t *testing.T) {
	if len(Kinds) != 12 {
		t.Fatalf("expected 12 kinds, got %d", len(Kinds))
	}
	if Kind("made-up").Valid() {
		t.Error("unknown kind reported as valid")
	}
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
}
