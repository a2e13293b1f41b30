package dataset

// RowMeta carries a canonical record's position and the set of fields
// that were present in the raw row.
type RowMeta struct {
	Index   int
	Present map[string]bool
	// Unclean holds the raw cells of integer fields that did not coerce to
	// a finite integral number, keyed by field name.
	Unclean map[string]Value
}

// Has reports whether the raw row supplied the field.
func (m RowMeta) Has(field string) bool {
	return m.Present[field]
}

// UncleanInt returns the raw cell of an integer field whose value was
// approximated during normalization.
func (m RowMeta) UncleanInt(field string) (Value, bool) {
	v, ok := m.Unclean[field]
	return v, ok
}

// StringList is a normalized list-of-scalars field. Rejected holds elements
// of a pass-through array that were neither strings nor numbers.
type StringList struct {
	Items    []string
	Rejected []Value
}

// Contains reports whether s is one of the items.
func (l StringList) Contains(s string) bool {
	for _, item := range l.Items {
		if item == s {
			return true
		}
	}
	return false
}

// IntList is a normalized list-of-integers field. Rejected holds elements
// of a pass-through array that were not integral numbers.
type IntList struct {
	Items    []int
	Rejected []Value
}

// Len returns the number of well-typed items.
func (l IntList) Len() int { return len(l.Items) }

// Record is implemented by the three canonical record types.
type Record interface {
	Entity() EntityType
	Meta() RowMeta
	ID() string
	Int(field string) (int, bool)
	IntList(field string) (IntList, bool)
	StringList(field string) (StringList, bool)
	JSON(field string) (Value, bool)
}

// Client is the canonical client row.
type Client struct {
	RowMeta
	ClientID         string
	ClientName       string
	PriorityLevel    int
	RequestedTaskIDs StringList
	GroupTag         string
	AttributesJSON   Value
}

func (c Client) Entity() EntityType { return Clients }
func (c Client) Meta() RowMeta      { return c.RowMeta }
func (c Client) ID() string         { return c.ClientID }

func (c Client) Int(field string) (int, bool) {
	if field == FieldPriorityLevel {
		return c.PriorityLevel, true
	}
	return 0, false
}

func (c Client) IntList(string) (IntList, bool) { return IntList{}, false }

func (c Client) StringList(field string) (StringList, bool) {
	if field == FieldRequestedTaskIDs {
		return c.RequestedTaskIDs, true
	}
	return StringList{}, false
}

func (c Client) JSON(field string) (Value, bool) {
	if field == FieldAttributesJSON {
		return c.AttributesJSON, true
	}
	return Value{}, false
}

// Worker is the canonical worker row.
type Worker struct {
	RowMeta
	WorkerID           string
	WorkerName         string
	Skills             StringList
	AvailableSlots     IntList
	MaxLoadPerPhase    int
	WorkerGroup        string
	QualificationLevel int
}

func (w Worker) Entity() EntityType { return Workers }
func (w Worker) Meta() RowMeta      { return w.RowMeta }
func (w Worker) ID() string         { return w.WorkerID }

func (w Worker) Int(field string) (int, bool) {
	switch field {
	case FieldMaxLoadPerPhase:
		return w.MaxLoadPerPhase, true
	case FieldQualificationLevel:
		return w.QualificationLevel, true
	}
	return 0, false
}

func (w Worker) IntList(field string) (IntList, bool) {
	if field == FieldAvailableSlots {
		return w.AvailableSlots, true
	}
	return IntList{}, false
}

func (w Worker) StringList(field string) (StringList, bool) {
	if field == FieldSkills {
		return w.Skills, true
	}
	return StringList{}, false
}

func (w Worker) JSON(string) (Value, bool) { return Value{}, false }

// HasAllSkills reports whether the worker holds every skill in required.
func (w Worker) HasAllSkills(required []string) bool {
	for _, s := range required {
		if !w.Skills.Contains(s) {
			return false
		}
	}
	return true
}

// Task is the canonical task row.
type Task struct {
	RowMeta
	TaskID          string
	TaskName        string
	Category        string
	Duration        int
	RequiredSkills  StringList
	PreferredPhases IntList
	MaxConcurrent   int
}

func (t Task) Entity() EntityType { return Tasks }
func (t Task) Meta() RowMeta      { return t.RowMeta }
func (t Task) ID() string         { return t.TaskID }

func (t Task) Int(field string) (int, bool) {
	switch field {
	case FieldDuration:
		return t.Duration, true
	case FieldMaxConcurrent:
		return t.MaxConcurrent, true
	}
	return 0, false
}

func (t Task) IntList(field string) (IntList, bool) {
	if field == FieldPreferredPhases {
		return t.PreferredPhases, true
	}
	return IntList{}, false
}

func (t Task) StringList(field string) (StringList, bool) {
	if field == FieldRequiredSkills {
		return t.RequiredSkills, true
	}
	return StringList{}, false
}

func (t Task) JSON(string) (Value, bool) { return Value{}, false }

// Records adapts a typed slice to the Record interface.
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
