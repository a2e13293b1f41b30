package dataset

import "fmt"

// Field names shared by the three entity sets.
const (
	FieldClientID         = "ClientID"
	FieldClientName       = "ClientName"
	FieldPriorityLevel    = "PriorityLevel"
	FieldRequestedTaskIDs = "RequestedTaskIDs"
	FieldGroupTag         = "GroupTag"
	FieldAttributesJSON   = "AttributesJSON"

	FieldWorkerID           = "WorkerID"
	FieldWorkerName         = "WorkerName"
	FieldSkills             = "Skills"
	FieldAvailableSlots     = "AvailableSlots"
	FieldMaxLoadPerPhase    = "MaxLoadPerPhase"
	FieldWorkerGroup        = "WorkerGroup"
	FieldQualificationLevel = "QualificationLevel"

	FieldTaskID          = "TaskID"
	FieldTaskName        = "TaskName"
	FieldCategory        = "Category"
	FieldDuration        = "Duration"
	FieldRequiredSkills  = "RequiredSkills"
	FieldPreferredPhases = "PreferredPhases"
	FieldMaxConcurrent   = "MaxConcurrent"
)

// FieldClass selects the normalization applied to a field.
type FieldClass int

const (
	ClassString FieldClass = iota
	ClassInteger
	ClassStringList
	ClassIntList
	ClassJSON
)

// ElemRule constrains the elements of a list field.
type ElemRule int

const (
	// ElemAny places no constraint on list elements.
	ElemAny ElemRule = iota
	// ElemScalar requires string or number elements.
	ElemScalar
	// ElemNumber requires finite numeric elements.
	ElemNumber
	// ElemPositiveInt requires integers >= 1.
	ElemPositiveInt
)

// Unbounded marks a range without an upper limit.
const Unbounded = 0

// FieldSpec describes one field of an entity schema.
type FieldSpec struct {
	Name        string
	Class       FieldClass
	Required    bool
	Min         int      // Lower bound for ClassInteger; ignored when HasRange is false
	Max         int      // Upper bound, or Unbounded
	HasRange    bool     // Whether Min/Max apply
	Elem        ElemRule // Element constraint for list classes
	Description string
}

// InRange reports whether n satisfies the field's domain.
func (f FieldSpec) InRange(n int) bool {
	if !f.HasRange {
		return true
	}
	if n < f.Min {
		return false
	}
	return f.Max == Unbounded || n <= f.Max
}

// Clamp pulls n into the field's domain.
func (f FieldSpec) Clamp(n int) int {
	if !f.HasRange {
		return n
	}
	if n < f.Min {
		return f.Min
	}
	if f.Max != Unbounded && n > f.Max {
		return f.Max
	}
	return n
}

// DomainText renders the domain for messages, e.g. "1-5" or ">= 1".
func (f FieldSpec) DomainText() string {
	if f.Max == Unbounded {
		return fmt.Sprintf(">= %d", f.Min)
	}
	return fmt.Sprintf("%d-%d", f.Min, f.Max)
}

// Schema is the ordered field table for one entity type.
type Schema struct {
	Entity  EntityType
	IDField string
	Fields  []FieldSpec
}

// Field looks up a field by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Required returns the names of required fields in schema order.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

var clientSchema = Schema{
	Entity:  Clients,
	IDField: FieldClientID,
	Fields: []FieldSpec{
		{Name: FieldClientID, Class: ClassString, Required: true, Description: "Unique client key"},
		{Name: FieldClientName, Class: ClassString, Required: true},
		{Name: FieldPriorityLevel, Class: ClassInteger, Required: true, HasRange: true, Min: 1, Max: 5,
			Description: "Client priority (1-5)"},
		{Name: FieldRequestedTaskIDs, Class: ClassStringList, Required: true, Elem: ElemScalar,
			Description: "TaskID references"},
		{Name: FieldGroupTag, Class: ClassString, Required: true},
		{Name: FieldAttributesJSON, Class: ClassJSON, Required: true, Description: "Free-form JSON metadata"},
	},
}

var workerSchema = Schema{
	Entity:  Workers,
	IDField: FieldWorkerID,
	Fields: []FieldSpec{
		{Name: FieldWorkerID, Class: ClassString, Required: true, Description: "Unique worker key"},
		{Name: FieldWorkerName, Class: ClassString, Required: true},
		{Name: FieldSkills, Class: ClassStringList, Required: true, Elem: ElemScalar},
		{Name: FieldAvailableSlots, Class: ClassIntList, Required: true, Elem: ElemNumber,
			Description: "Phases the worker can be scheduled in"},
		{Name: FieldMaxLoadPerPhase, Class: ClassInteger, Required: true, HasRange: true, Min: 1, Max: Unbounded},
		{Name: FieldWorkerGroup, Class: ClassString, Required: true},
		{Name: FieldQualificationLevel, Class: ClassInteger, Required: true, HasRange: true, Min: 1, Max: 3,
			Description: "Worker qualification (1-3)"},
	},
}

var taskSchema = Schema{
	Entity:  Tasks,
	IDField: FieldTaskID,
	Fields: []FieldSpec{
		{Name: FieldTaskID, Class: ClassString, Required: true, Description: "Unique task key"},
		{Name: FieldTaskName, Class: ClassString, Required: true},
		{Name: FieldCategory, Class: ClassString, Required: true},
		{Name: FieldDuration, Class: ClassInteger, Required: true, HasRange: true, Min: 1, Max: Unbounded,
			Description: "Phases consumed"},
		{Name: FieldRequiredSkills, Class: ClassStringList, Required: true, Elem: ElemScalar},
		{Name: FieldPreferredPhases, Class: ClassIntList, Required: true, Elem: ElemPositiveInt},
		{Name: FieldMaxConcurrent, Class: ClassInteger, Required: true, HasRange: true, Min: 1, Max: Unbounded},
	},
}

// SchemaFor returns the field table for an entity type.
func SchemaFor(entity EntityType) (Schema, error) {
	switch entity {
	case Clients:
		return clientSchema, nil
	case Workers:
		return workerSchema, nil
	case Tasks:
		return taskSchema, nil
	default:
		return Schema{}, fmt.Errorf("no schema for entity type %q", entity)
	}
}

// MustSchema is SchemaFor for the three known entity types.
func MustSchema(entity EntityType) Schema {
	s, err := SchemaFor(entity)
	if err != nil {
		panic(err)
	}
	return s
}
