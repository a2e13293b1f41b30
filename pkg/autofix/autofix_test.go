package autofix

import (
	"testing"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/normalize"
	"github.com/Mahi3005/data-alchemist/pkg/validator"
)

func diag(entity dataset.EntityType, kind diagnostics.Kind, row int, field string) diagnostics.Diagnostic {
	return diagnostics.New(entity, kind, row, field, "test", nil)
}

func TestFix(t *testing.T) {
	tests := []struct {
		name      string
		record    dataset.RawRecord
		diag      diagnostics.Diagnostic
		field     string
		want      dataset.Value
		wantApply bool
	}{
		{
			name:      "wrap plain string",
			record:    dataset.RawRecord{dataset.FieldAttributesJSON: dataset.String("T33")},
			diag:      diag(dataset.Clients, diagnostics.KindInvalidJSONString, 0, dataset.FieldAttributesJSON),
			field:     dataset.FieldAttributesJSON,
			want:      dataset.Object(map[string]dataset.Value{"value": dataset.String("T33")}),
			wantApply: true,
		},
		{
			name:      "parseable string untouched",
			record:    dataset.RawRecord{dataset.FieldAttributesJSON: dataset.String(`{"a":1}`)},
			diag:      diag(dataset.Clients, diagnostics.KindInvalidJSONString, 0, dataset.FieldAttributesJSON),
			field:     dataset.FieldAttributesJSON,
			want:      dataset.String(`{"a":1}`),
			wantApply: false,
		},
		{
			name:      "clamp priority high",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(7)},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(5),
			wantApply: true,
		},
		{
			name:      "clamp priority text",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.String("urgent")},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(1),
			wantApply: true,
		},
		{
			name:      "clamp qualification",
			record:    dataset.RawRecord{dataset.FieldQualificationLevel: dataset.String("9")},
			diag:      diag(dataset.Workers, diagnostics.KindOutOfRange, 0, dataset.FieldQualificationLevel),
			field:     dataset.FieldQualificationLevel,
			want:      dataset.Number(3),
			wantApply: true,
		},
		{
			name:      "clamp huge priority",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(1e20)},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(5),
			wantApply: true,
		},
		{
			name:      "clamp huge priority string",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.String("99999999999999999999")},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(5),
			wantApply: true,
		},
		{
			name:      "clamp huge negative priority",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(-1e20)},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(1),
			wantApply: true,
		},
		{
			name:      "truncate fractional priority",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(5.5)},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(5),
			wantApply: true,
		},
		{
			name:      "raise fraction below one",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(0.5)},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(1),
			wantApply: true,
		},
		{
			name:      "priority with trailing garbage",
			record:    dataset.RawRecord{dataset.FieldPriorityLevel: dataset.String("3abc")},
			diag:      diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
			field:     dataset.FieldPriorityLevel,
			want:      dataset.Number(3),
			wantApply: true,
		},
		{
			name:      "duration range not fixable",
			record:    dataset.RawRecord{dataset.FieldDuration: dataset.Number(0)},
			diag:      diag(dataset.Tasks, diagnostics.KindOutOfRange, 0, dataset.FieldDuration),
			field:     dataset.FieldDuration,
			want:      dataset.Number(0),
			wantApply: false,
		},
		{
			name:      "slots comma string",
			record:    dataset.RawRecord{dataset.FieldAvailableSlots: dataset.String("1, x, 3")},
			diag:      diag(dataset.Workers, diagnostics.KindMalformedList, 0, dataset.FieldAvailableSlots),
			field:     dataset.FieldAvailableSlots,
			want:      dataset.Ints(1, 3),
			wantApply: true,
		},
		{
			name:      "slots dashed range",
			record:    dataset.RawRecord{dataset.FieldAvailableSlots: dataset.String("2-4")},
			diag:      diag(dataset.Workers, diagnostics.KindMalformedList, 0, dataset.FieldAvailableSlots),
			field:     dataset.FieldAvailableSlots,
			want:      dataset.Ints(2, 3, 4),
			wantApply: true,
		},
		{
			name:      "slots already array",
			record:    dataset.RawRecord{dataset.FieldAvailableSlots: dataset.Array(dataset.String("a"))},
			diag:      diag(dataset.Workers, diagnostics.KindMalformedList, 0, dataset.FieldAvailableSlots),
			field:     dataset.FieldAvailableSlots,
			want:      dataset.Array(dataset.String("a")),
			wantApply: false,
		},
		{
			name:      "unfixable kind",
			record:    dataset.RawRecord{dataset.FieldRequestedTaskIDs: dataset.Strings("T9")},
			diag:      diag(dataset.Clients, diagnostics.KindUnknownReference, 0, dataset.FieldRequestedTaskIDs),
			field:     dataset.FieldRequestedTaskIDs,
			want:      dataset.Strings("T9"),
			wantApply: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.record.Clone()
			got, applied := Fix(tt.record, tt.diag)

			if applied != tt.wantApply {
				t.Errorf("applied = %v, want %v", applied, tt.wantApply)
			}
			if !got[tt.field].Equal(tt.want) {
				t.Errorf("%s = %s, want %s", tt.field, got[tt.field].Text(), tt.want.Text())
			}
			if !tt.record.Equal(before) {
				t.Error("Fix mutated its input")
			}
			if Fixable(tt.diag) == false && applied {
				t.Error("Fix applied a remedy Fixable does not report")
			}
		})
	}
}

func TestFix_Idempotent(t *testing.T) {
	cases := []struct {
		record dataset.RawRecord
		diag   diagnostics.Diagnostic
	}{
		{dataset.RawRecord{dataset.FieldAttributesJSON: dataset.String("gold")}, diag(dataset.Clients, diagnostics.KindInvalidJSONString, 0, dataset.FieldAttributesJSON)},
		{dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(-3)}, diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel)},
		{dataset.RawRecord{dataset.FieldQualificationLevel: dataset.Number(12)}, diag(dataset.Workers, diagnostics.KindOutOfRange, 0, dataset.FieldQualificationLevel)},
		{dataset.RawRecord{dataset.FieldAvailableSlots: dataset.String("1-3")}, diag(dataset.Workers, diagnostics.KindMalformedList, 0, dataset.FieldAvailableSlots)},
		{dataset.RawRecord{dataset.FieldDuration: dataset.Number(0)}, diag(dataset.Tasks, diagnostics.KindOutOfRange, 0, dataset.FieldDuration)},
		{dataset.RawRecord{dataset.FieldPriorityLevel: dataset.Number(1e20)}, diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel)},
	}

	for _, c := range cases {
		once, _ := Fix(c.record, c.diag)
		twice, appliedAgain := Fix(once, c.diag)
		if !once.Equal(twice) {
			t.Errorf("%s: second application changed the record", c.diag.ID)
		}
		if appliedAgain {
			t.Errorf("%s: second application reported a change", c.diag.ID)
		}
	}
}

func TestFix_RangeInvariant(t *testing.T) {
	for _, raw := range []dataset.Value{dataset.Number(-10), dataset.Number(0), dataset.Number(6), dataset.String("x"), dataset.Number(100),
		dataset.Number(1e20), dataset.String("99999999999999999999"), dataset.Number(5.5), dataset.Number(0.5), dataset.String("3abc")} {
		rows := []dataset.RawRecord{{dataset.FieldClientID: dataset.String("C1"), dataset.FieldPriorityLevel: raw}}
		d := diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel)

		fixed, applied := FixAll(dataset.Clients, rows, []diagnostics.Diagnostic{d})
		if len(applied) != 1 {
			t.Fatalf("priority %s: fix not applied", raw.Text())
		}

		records := dataset.Records(normalize.Clients(fixed))
		diags := validator.NewRuleValidator().Validate(records, dataset.MustSchema(dataset.Clients))
		for _, got := range diags {
			if got.Kind == diagnostics.KindOutOfRange {
				t.Errorf("priority %s still out of range after fix", raw.Text())
			}
		}
		if p := normalize.Client(0, fixed[0]).PriorityLevel; p < 1 || p > 5 {
			t.Errorf("PriorityLevel = %d after fix", p)
		}
	}
}

func TestFixAll(t *testing.T) {
	rows := []dataset.RawRecord{
		{dataset.FieldPriorityLevel: dataset.Number(9), dataset.FieldAttributesJSON: dataset.String("plain")},
		{dataset.FieldPriorityLevel: dataset.Number(2)},
	}
	diags := []diagnostics.Diagnostic{
		diag(dataset.Clients, diagnostics.KindOutOfRange, 0, dataset.FieldPriorityLevel),
		diag(dataset.Clients, diagnostics.KindInvalidJSONString, 0, dataset.FieldAttributesJSON),
		diag(dataset.Clients, diagnostics.KindUnknownReference, 1, dataset.FieldRequestedTaskIDs),
		diag(dataset.Workers, diagnostics.KindOutOfRange, 0, dataset.FieldQualificationLevel),
		diag(dataset.Clients, diagnostics.KindOutOfRange, 7, dataset.FieldPriorityLevel),
	}

	fixed, applied := FixAll(dataset.Clients, rows, diags)
	if len(applied) != 2 {
		t.Fatalf("applied = %d, want 2: %+v", len(applied), applied)
	}
	if fixed[0][dataset.FieldPriorityLevel].Num != 5 {
		t.Errorf("priority not clamped: %v", fixed[0][dataset.FieldPriorityLevel].Text())
	}
	if fixed[0][dataset.FieldAttributesJSON].Kind != dataset.KindObject {
		t.Error("attributes not wrapped")
	}
	if rows[0][dataset.FieldPriorityLevel].Num != 9 {
		t.Error("FixAll mutated its input")
	}
}
