package diagnostics

import "github.com/Mahi3005/data-alchemist/pkg/dataset"

// Detail is the kind-specific payload of a diagnostic. The set of
// implementations is closed to this package.
type Detail interface {
	isDetail()
}

// MissingDataDetail accompanies KindMissingData.
type MissingDataDetail struct{}

// MissingColumnDetail accompanies KindMissingColumn.
type MissingColumnDetail struct {
	Column  string
	Closest string // Closest existing header, if any
}

// DuplicateDetail accompanies KindDuplicateID.
type DuplicateDetail struct {
	ID   string
	Rows []int // Every row holding the ID
}

// RangeDetail accompanies KindOutOfRange.
type RangeDetail struct {
	Value int
	Raw   string // Cell text when it was not a clean integer
	Min   int
	Max   int // dataset.Unbounded for open ranges
}

// ListDetail accompanies KindMalformedList.
type ListDetail struct {
	Rejected []dataset.Value
}

// JSONDetail accompanies KindInvalidJSONString, KindBrokenJSON and KindInvalidJSONType.
type JSONDetail struct {
	Raw        string
	ParseError string
	ValueKind  dataset.ValueKind
}

// ReferenceDetail accompanies KindUnknownReference.
type ReferenceDetail struct {
	Ref string
}

// SkillDetail accompanies KindSkillCoverage.
type SkillDetail struct {
	Skill string
}

// ConcurrencyDetail accompanies KindMaxConcurrency.
type ConcurrencyDetail struct {
	Qualified     int
	MaxConcurrent int
}

// OverloadDetail accompanies KindOverloadedWorker.
type OverloadDetail struct {
	Slots   int
	MaxLoad int
}

func (MissingDataDetail) isDetail()   {}
func (MissingColumnDetail) isDetail() {}
func (DuplicateDetail) isDetail()     {}
func (RangeDetail) isDetail()         {}
func (ListDetail) isDetail()          {}
func (ReferenceDetail) isDetail()     {}
func (SkillDetail) isDetail()         {}
func (ConcurrencyDetail) isDetail()   {}
func (OverloadDetail) isDetail()      {}
func (JSONDetail) isDetail()          {}
