package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EntityType names one of the three entity sets.
type EntityType string

const (
	Clients EntityType = "clients"
	Workers EntityType = "workers"
	Tasks   EntityType = "tasks"
)

// EntityTypes lists the entity sets in pipeline order.
var EntityTypes = []EntityType{Clients, Workers, Tasks}

// ParseEntityType accepts the plural names plus their singular forms.
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "clients", "client":
		return Clients, nil
	case "workers", "worker":
		return Workers, nil
	case "tasks", "task":
		return Tasks, nil
	default:
		return "", fmt.Errorf("unknown entity type %q (expected clients, workers or tasks)", s)
	}
}

// Singular returns the singular noun used in messages.
func (e EntityType) Singular() string {
	switch e {
	case Clients:
		return "Client"
	case Workers:
		return "Worker"
	case Tasks:
		return "Task"
	default:
		return string(e)
	}
}

// RawRecord is one row as produced by the upstream parser.
type RawRecord map[string]Value

// Clone returns a deep copy of the row.
func (r RawRecord) Clone() RawRecord {
	if r == nil {
		return nil
	}
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the row's field names in sorted order.
func (r RawRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two rows hold structurally equal values.
func (r RawRecord) Equal(o RawRecord) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes a JSON object into a row.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.Kind == KindNull {
		return nil
	}
	if v.Kind != KindObject {
		return fmt.Errorf("row must be a JSON object, got %s", v.Kind)
	}
	*r = RawRecord(v.Object)
	return nil
}

// MarshalJSON encodes the row as a JSON object with sorted keys.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	return Object(map[string]Value(r)).MarshalJSON()
}

// CloneRows deep-copies a slice of rows, preserving nil.
func CloneRows(rows []RawRecord) []RawRecord {
	if rows == nil {
		return nil
	}
	out := make([]RawRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// RowsFromJSON decodes a JSON array of objects.
func RowsFromJSON(data []byte) ([]RawRecord, error) {
	var rows []RawRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []RawRecord{}
	}
	return rows, nil
}
