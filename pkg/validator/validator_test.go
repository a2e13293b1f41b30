package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/normalize"
)

func validClient(id string, tasks ...string) dataset.RawRecord {
	return dataset.RawRecord{
		dataset.FieldClientID:         dataset.String(id),
		dataset.FieldClientName:       dataset.String("Acme"),
		dataset.FieldPriorityLevel:    dataset.Number(3),
		dataset.FieldRequestedTaskIDs: dataset.Strings(tasks...),
		dataset.FieldGroupTag:         dataset.String("GroupA"),
		dataset.FieldAttributesJSON:   dataset.String(`{"vip":true}`),
	}
}

func validWorker(id string, skills ...string) dataset.RawRecord {
	return dataset.RawRecord{
		dataset.FieldWorkerID:           dataset.String(id),
		dataset.FieldWorkerName:         dataset.String("Ann"),
		dataset.FieldSkills:             dataset.Strings(skills...),
		dataset.FieldAvailableSlots:     dataset.Ints(1, 2, 3),
		dataset.FieldMaxLoadPerPhase:    dataset.Number(2),
		dataset.FieldWorkerGroup:        dataset.String("GroupA"),
		dataset.FieldQualificationLevel: dataset.Number(2),
	}
}

func validTask(id string, maxConcurrent int, skills ...string) dataset.RawRecord {
	return dataset.RawRecord{
		dataset.FieldTaskID:          dataset.String(id),
		dataset.FieldTaskName:        dataset.String("Build"),
		dataset.FieldCategory:        dataset.String("ETL"),
		dataset.FieldDuration:        dataset.Number(1),
		dataset.FieldRequiredSkills:  dataset.Strings(skills...),
		dataset.FieldPreferredPhases: dataset.Ints(1, 2),
		dataset.FieldMaxConcurrent:   dataset.Number(float64(maxConcurrent)),
	}
}

func kinds(ds []diagnostics.Diagnostic) []diagnostics.Kind {
	out := make([]diagnostics.Kind, len(ds))
	for i, d := range ds {
		out[i] = d.Kind
	}
	return out
}

func countKind(ds []diagnostics.Diagnostic, k diagnostics.Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

func TestStructural_MissingData(t *testing.T) {
	v := NewValidator()
	diags, err := v.ValidateEntity(dataset.Workers, dataset.Records(normalize.Workers([]dataset.RawRecord{})))
	if err != nil {
		t.Fatalf("ValidateEntity() error = %v", err)
	}
	if len(diags) != 1 || diags[0].Kind != diagnostics.KindMissingData {
		t.Fatalf("expected single missing-data, got %v", kinds(diags))
	}
	if diags[0].RowIndex != nil {
		t.Error("missing-data must not be row-scoped")
	}
}

func TestStructural_MissingColumns(t *testing.T) {
	row := validClient("C1")
	delete(row, dataset.FieldPriorityLevel)
	delete(row, dataset.FieldGroupTag)
	row["Priority Level"] = dataset.Number(2)

	diags := NewStructuralValidator().Validate(
		dataset.Records(normalize.Clients([]dataset.RawRecord{row})),
		dataset.MustSchema(dataset.Clients),
	)

	if got := countKind(diags, diagnostics.KindMissingColumn); got != 2 {
		t.Fatalf("missing-column count = %d, want 2 (%v)", got, kinds(diags))
	}
	first := diags[0]
	if first.Field != dataset.FieldPriorityLevel {
		t.Errorf("first missing column = %s, want schema order", first.Field)
	}
	if !strings.Contains(first.Suggestion, "Priority Level") {
		t.Errorf("suggestion should name the near-miss header: %q", first.Suggestion)
	}
}

func TestStructural_ColumnsFromFirstRowOnly(t *testing.T) {
	second := validClient("C2")
	delete(second, dataset.FieldGroupTag)

	diags := NewStructuralValidator().Validate(
		dataset.Records(normalize.Clients([]dataset.RawRecord{validClient("C1"), second})),
		dataset.MustSchema(dataset.Clients),
	)
	if countKind(diags, diagnostics.KindMissingColumn) != 0 {
		t.Errorf("column check must only inspect the first row, got %v", kinds(diags))
	}
}

func TestStructural_DuplicateIDPerOccurrence(t *testing.T) {
	rows := []dataset.RawRecord{
		validTask("T1", 1), validTask("T2", 1), validTask("T1", 1), validTask("T1", 1), validTask("", 1), validTask("", 1),
	}
	diags := NewStructuralValidator().Validate(dataset.Records(normalize.Tasks(rows)), dataset.MustSchema(dataset.Tasks))

	dups := diagnostics.NewList()
	dups.Extend(diags)
	got := dups.ByKind(diagnostics.KindDuplicateID)
	if len(got) != 3 {
		t.Fatalf("duplicate-id count = %d, want 3 (one per occurrence, empty IDs skipped)", len(got))
	}

	rows2 := map[int]bool{}
	ids := map[string]bool{}
	for _, d := range got {
		rows2[d.Row()] = true
		ids[d.ID] = true
	}
	for _, r := range []int{0, 2, 3} {
		if !rows2[r] {
			t.Errorf("missing duplicate-id for row %d", r)
		}
	}
	if len(ids) != 3 {
		t.Errorf("duplicate diagnostics must have distinct IDs, got %v", ids)
	}
}

func TestRules_Range(t *testing.T) {
	tests := []struct {
		name      string
		entity    dataset.EntityType
		row       dataset.RawRecord
		field     string
		wantRange bool
	}{
		{"priority too high", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.Number(7)), dataset.FieldPriorityLevel, true},
		{"priority text", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.String("high")), dataset.FieldPriorityLevel, true},
		{"priority ok", dataset.Clients, validClient("C1"), dataset.FieldPriorityLevel, false},
		{"qualification too high", dataset.Workers, withField(validWorker("W1"), dataset.FieldQualificationLevel, dataset.Number(4)), dataset.FieldQualificationLevel, true},
		{"max load zero", dataset.Workers, withField(validWorker("W1"), dataset.FieldMaxLoadPerPhase, dataset.Number(0)), dataset.FieldMaxLoadPerPhase, true},
		{"duration zero", dataset.Tasks, withField(validTask("T1", 1), dataset.FieldDuration, dataset.String("0")), dataset.FieldDuration, true},
		{"max concurrent large ok", dataset.Tasks, withField(validTask("T1", 1), dataset.FieldMaxConcurrent, dataset.Number(99)), dataset.FieldMaxConcurrent, false},
		{"priority fraction", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.Number(5.5)), dataset.FieldPriorityLevel, true},
		{"priority below one fraction", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.Number(0.5)), dataset.FieldPriorityLevel, true},
		{"priority trailing garbage", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.String("3abc")), dataset.FieldPriorityLevel, true},
		{"priority decimal string ok", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.String("2.0")), dataset.FieldPriorityLevel, false},
		{"priority huge", dataset.Clients, withField(validClient("C1"), dataset.FieldPriorityLevel, dataset.Number(1e20)), dataset.FieldPriorityLevel, true},
		{"duration fraction", dataset.Tasks, withField(validTask("T1", 1), dataset.FieldDuration, dataset.Number(2.5)), dataset.FieldDuration, true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := normalize.Records(tt.entity, []dataset.RawRecord{tt.row})
			if err != nil {
				t.Fatal(err)
			}
			diags := v.ValidateRules(records, dataset.MustSchema(tt.entity))

			found := false
			for _, d := range diags {
				if d.Kind == diagnostics.KindOutOfRange && d.Field == tt.field {
					found = true
					if d.Suggestion == "" {
						t.Error("out-of-range must carry a suggestion")
					}
				}
			}
			if found != tt.wantRange {
				t.Errorf("out-of-range on %s = %v, want %v (%v)", tt.field, found, tt.wantRange, kinds(diags))
			}
		})
	}
}

func TestRules_RangeMessageShowsCell(t *testing.T) {
	tests := []struct {
		name           string
		value          dataset.Value
		wantMessage    string
		wantSuggestion string
		wantRaw        string
	}{
		{"fraction", dataset.Number(5.5), "PriorityLevel '5.5' in row 1", "Set PriorityLevel to 5", "5.5"},
		{"trailing garbage", dataset.String("3abc"), "PriorityLevel '3abc' in row 1", "Set PriorityLevel to 3", "3abc"},
		{"huge number", dataset.Number(1e20), "PriorityLevel '100000000000000000000' in row 1", "Set PriorityLevel to 5", "100000000000000000000"},
		{"huge string", dataset.String("99999999999999999999"), "PriorityLevel '99999999999999999999' in row 1", "Set PriorityLevel to 5", "99999999999999999999"},
		{"clean integer", dataset.Number(9), "PriorityLevel '9' in row 1", "Set PriorityLevel to 5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := withField(validClient("C1"), dataset.FieldPriorityLevel, tt.value)
			diags := NewRuleValidator().Validate(dataset.Records(normalize.Clients([]dataset.RawRecord{row})), dataset.MustSchema(dataset.Clients))
			if len(diags) != 1 {
				t.Fatalf("got %v, want one out-of-range", kinds(diags))
			}
			d := diags[0]
			if !strings.HasPrefix(d.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want prefix %q", d.Message, tt.wantMessage)
			}
			if d.Suggestion != tt.wantSuggestion {
				t.Errorf("Suggestion = %q, want %q", d.Suggestion, tt.wantSuggestion)
			}
			detail, ok := d.Detail.(diagnostics.RangeDetail)
			if !ok {
				t.Fatalf("Detail = %T, want RangeDetail", d.Detail)
			}
			if detail.Raw != tt.wantRaw {
				t.Errorf("Detail.Raw = %q, want %q", detail.Raw, tt.wantRaw)
			}
		})
	}
}

func TestRules_AbsentFieldSkipped(t *testing.T) {
	row := validClient("C1")
	delete(row, dataset.FieldPriorityLevel)

	diags := NewRuleValidator().Validate(dataset.Records(normalize.Clients([]dataset.RawRecord{row})), dataset.MustSchema(dataset.Clients))
	if len(diags) != 0 {
		t.Errorf("absent field should not be range-checked, got %v", kinds(diags))
	}
}

func TestRules_MalformedLists(t *testing.T) {
	tests := []struct {
		name   string
		entity dataset.EntityType
		row    dataset.RawRecord
		field  string
	}{
		{"slots with text", dataset.Workers,
			withField(validWorker("W1"), dataset.FieldAvailableSlots, dataset.Array(dataset.Number(1), dataset.String("x"))), dataset.FieldAvailableSlots},
		{"slots string with junk", dataset.Workers,
			withField(validWorker("W1"), dataset.FieldAvailableSlots, dataset.String("1, two")), dataset.FieldAvailableSlots},
		{"phases with zero", dataset.Tasks,
			withField(validTask("T1", 1), dataset.FieldPreferredPhases, dataset.Ints(0, 1)), dataset.FieldPreferredPhases},
		{"requested ids with object", dataset.Clients,
			withField(validClient("C1"), dataset.FieldRequestedTaskIDs, dataset.Array(dataset.Object(nil))), dataset.FieldRequestedTaskIDs},
		{"skills with bool", dataset.Workers,
			withField(validWorker("W1"), dataset.FieldSkills, dataset.Array(dataset.Bool(true))), dataset.FieldSkills},
	}

	v := NewRuleValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _ := normalize.Records(tt.entity, []dataset.RawRecord{tt.row})
			diags := v.Validate(records, dataset.MustSchema(tt.entity))
			if len(diags) != 1 || diags[0].Kind != diagnostics.KindMalformedList || diags[0].Field != tt.field {
				t.Fatalf("expected one malformed-list on %s, got %v", tt.field, diags)
			}
			if _, ok := diags[0].Detail.(diagnostics.ListDetail); !ok {
				t.Errorf("detail = %T, want ListDetail", diags[0].Detail)
			}
		})
	}
}

func TestClassifyJSON(t *testing.T) {
	tests := []struct {
		name  string
		value dataset.Value
		want  diagnostics.Kind
	}{
		{"object", dataset.Object(map[string]dataset.Value{"a": dataset.Number(1)}), ""},
		{"parseable string", dataset.String(`{"a":1}`), ""},
		{"parseable quoted literal", dataset.String(`"hello"`), ""},
		{"empty string", dataset.String(""), ""},
		{"plain string", dataset.String("T33"), diagnostics.KindInvalidJSONString},
		{"broken object", dataset.String("{bad json"), diagnostics.KindBrokenJSON},
		{"single quotes", dataset.String("{'a': 1}"), diagnostics.KindBrokenJSON},
		{"number", dataset.Number(5), diagnostics.KindInvalidJSONType},
		{"bool", dataset.Bool(false), diagnostics.KindInvalidJSONType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, found := ClassifyJSON(dataset.Clients, 0, dataset.FieldAttributesJSON, tt.value)
			if tt.want == "" {
				if found {
					t.Errorf("expected no diagnostic, got %s", d.Kind)
				}
				return
			}
			if !found || d.Kind != tt.want {
				t.Errorf("ClassifyJSON() = %s (found=%v), want %s", d.Kind, found, tt.want)
			}
			if d.Severity != diagnostics.SeverityError {
				t.Errorf("JSON diagnostics are errors, got %s", d.Severity)
			}
		})
	}
}

func TestClassifyJSON_BrokenSuggestion(t *testing.T) {
	d, _ := ClassifyJSON(dataset.Clients, 0, dataset.FieldAttributesJSON, dataset.String("{bad json"))
	if !strings.Contains(d.Suggestion, "closing brace") {
		t.Errorf("suggestion = %q, want unmatched brace hint", d.Suggestion)
	}
}

func TestIsPlainString(t *testing.T) {
	for s, want := range map[string]bool{
		"T33":       true,
		"gold tier": true,
		"{x":        false,
		"x}":        false,
		"[1":        false,
		"'a'":       false,
		`"a`:        false,
		"":          false,
	} {
		if got := IsPlainString(s); got != want {
			t.Errorf("IsPlainString(%q) = %v, want %v", s, got, want)
		}
	}
}

func sets(clients, workers, tasks []dataset.RawRecord) EntitySets {
	return EntitySets{
		Clients: normalize.Clients(clients),
		Workers: normalize.Workers(workers),
		Tasks:   normalize.Tasks(tasks),
	}
}

func TestConsistency_IncompleteSet(t *testing.T) {
	v := NewConsistencyValidator()
	_, err := v.Validate(EntitySets{Clients: []dataset.Client{}, Workers: []dataset.Worker{}})
	if !errors.Is(err, ErrIncompleteEntitySet) {
		t.Errorf("err = %v, want ErrIncompleteEntitySet", err)
	}

	diags, err := v.Validate(sets([]dataset.RawRecord{}, []dataset.RawRecord{}, []dataset.RawRecord{}))
	if err != nil || len(diags) != 0 {
		t.Errorf("empty but present sets should validate cleanly: %v %v", diags, err)
	}
}

func TestConsistency_UnknownReference(t *testing.T) {
	s := sets(
		[]dataset.RawRecord{validClient("C1", "T1", "T9", "T9", "T8")},
		[]dataset.RawRecord{validWorker("W1")},
		[]dataset.RawRecord{validTask("T1", 1)},
	)
	diags, err := NewConsistencyValidator().Validate(s)
	if err != nil {
		t.Fatal(err)
	}

	refs := map[string]bool{}
	for _, d := range diags {
		if d.Kind == diagnostics.KindUnknownReference {
			refs[d.Detail.(diagnostics.ReferenceDetail).Ref] = true
			if d.EntityType != dataset.Clients || d.Row() != 0 {
				t.Errorf("unknown-reference misaddressed: %+v", d)
			}
		}
	}
	if len(refs) != 2 || !refs["T9"] || !refs["T8"] {
		t.Errorf("unknown refs = %v, want T9 and T8 once each", refs)
	}
}

func TestConsistency_SkillCoverage(t *testing.T) {
	s := sets(
		[]dataset.RawRecord{validClient("C1")},
		[]dataset.RawRecord{validWorker("W1", "go")},
		[]dataset.RawRecord{validTask("T1", 1, "go", "rust", "sql")},
	)
	diags, _ := NewConsistencyValidator().Validate(s)
	if got := countKind(diags, diagnostics.KindSkillCoverage); got != 2 {
		t.Errorf("skill-coverage = %d, want 2", got)
	}
	for _, d := range diags {
		if d.Kind == diagnostics.KindSkillCoverage && !strings.Contains(d.Suggestion, "to at least one worker") {
			t.Errorf("suggestion = %q", d.Suggestion)
		}
	}
}

func TestConsistency_Concurrency(t *testing.T) {
	s := sets(
		[]dataset.RawRecord{validClient("C1")},
		[]dataset.RawRecord{validWorker("W1", "rust"), validWorker("W2", "go")},
		[]dataset.RawRecord{validTask("T1", 2, "rust"), validTask("T2", 2)},
	)
	diags, _ := NewConsistencyValidator().Validate(s)

	var got []diagnostics.Diagnostic
	for _, d := range diags {
		if d.Kind == diagnostics.KindMaxConcurrency {
			got = append(got, d)
		}
	}
	if len(got) != 1 {
		t.Fatalf("max-concurrency = %d, want 1 (%v)", len(got), kinds(diags))
	}
	d := got[0]
	if d.Severity != diagnostics.SeverityWarning {
		t.Errorf("severity = %s, want warning", d.Severity)
	}
	if detail := d.Detail.(diagnostics.ConcurrencyDetail); detail.Qualified != 1 || detail.MaxConcurrent != 2 {
		t.Errorf("detail = %+v", detail)
	}
	if !strings.Contains(d.Suggestion, "Reduce MaxConcurrent to 1") {
		t.Errorf("suggestion = %q", d.Suggestion)
	}
}

func TestConsistency_Overload(t *testing.T) {
	overloaded := validWorker("W1")
	overloaded[dataset.FieldAvailableSlots] = dataset.String("1,2")
	overloaded[dataset.FieldMaxLoadPerPhase] = dataset.Number(3)

	s := sets([]dataset.RawRecord{validClient("C1")}, []dataset.RawRecord{overloaded, validWorker("W2")}, []dataset.RawRecord{validTask("T1", 1)})
	diags, _ := NewConsistencyValidator().Validate(s)

	if got := countKind(diags, diagnostics.KindOverloadedWorker); got != 1 {
		t.Fatalf("overloaded-worker = %d, want 1", got)
	}
	for _, d := range diags {
		if d.Kind == diagnostics.KindOverloadedWorker {
			if d.EntityType != dataset.Workers || d.Row() != 0 || d.Severity != diagnostics.SeverityWarning {
				t.Errorf("overloaded-worker misaddressed: %+v", d)
			}
			if !strings.Contains(d.Suggestion, "Reduce MaxLoadPerPhase to 2") {
				t.Errorf("suggestion = %q", d.Suggestion)
			}
		}
	}
}

func TestConsistency_OverloadNeedsSlots(t *testing.T) {
	tests := []struct {
		name   string
		slots  *dataset.Value
		load   float64
		expect int
	}{
		{"slots column absent", nil, 3, 0},
		{"empty slots", ptr(dataset.Ints()), 1, 1},
		{"enough slots", ptr(dataset.Ints(1, 2)), 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWorker("W1")
			delete(w, dataset.FieldAvailableSlots)
			if tt.slots != nil {
				w[dataset.FieldAvailableSlots] = *tt.slots
			}
			w[dataset.FieldMaxLoadPerPhase] = dataset.Number(tt.load)

			s := sets([]dataset.RawRecord{validClient("C1")}, []dataset.RawRecord{w}, []dataset.RawRecord{validTask("T1", 1)})
			diags := OverloadCheck{}.Run(s)
			if got := countKind(diags, diagnostics.KindOverloadedWorker); got != tt.expect {
				t.Errorf("overloaded-worker = %d, want %d", got, tt.expect)
			}
		})
	}
}

func ptr(v dataset.Value) *dataset.Value { return &v }

type stubCheck struct{}

func (stubCheck) Name() string { return "stub" }
func (stubCheck) Run(s EntitySets) []diagnostics.Diagnostic {
	return []diagnostics.Diagnostic{diagnostics.New(dataset.Tasks, diagnostics.KindMaxConcurrency, 0, "", "stub", nil)}
}

func TestConsistency_PluggableChecks(t *testing.T) {
	v := NewValidator(stubCheck{})
	names := v.ConsistencyChecks()
	if names[len(names)-1] != "stub" {
		t.Errorf("extra check not registered last: %v", names)
	}
	for _, want := range []string{"phase-saturation", "co-run-cycles"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("reserved check %s not registered", want)
		}
	}

	diags, err := v.ValidateConsistency(sets([]dataset.RawRecord{}, []dataset.RawRecord{}, []dataset.RawRecord{}))
	if err != nil || len(diags) != 1 {
		t.Errorf("stub check output missing: %v %v", diags, err)
	}
}

func TestReferentialClosure(t *testing.T) {
	s := sets(
		[]dataset.RawRecord{validClient("C1", "T1", "T2"), validClient("C2", "T2")},
		[]dataset.RawRecord{validWorker("W1")},
		[]dataset.RawRecord{validTask("T1", 1), validTask("T2", 1)},
	)
	diags, _ := NewConsistencyValidator().Validate(s)
	if countKind(diags, diagnostics.KindUnknownReference) != 0 {
		t.Fatalf("unexpected unknown-reference: %v", diags)
	}

	taskIDs := map[string]bool{}
	for _, task := range s.Tasks {
		taskIDs[task.TaskID] = true
	}
	for _, c := range s.Clients {
		for _, ref := range c.RequestedTaskIDs.Items {
			if !taskIDs[ref] {
				t.Errorf("client %s references %s which is not a task", c.ClientID, ref)
			}
		}
	}
}

func withField(r dataset.RawRecord, field string, v dataset.Value) dataset.RawRecord {
	out := r.Clone()
	out[field] = v
	return out
}
