// Package normalize narrows raw spreadsheet rows into canonical typed records.
//
// It is the only place where input encoding variance is handled: a list may
// arrive as an array, a JSON array string, a comma-separated string or a
// dashed range, and an integer may arrive as a number or a string. Every
// function here is pure and total. Unparseable input degrades to a safe
// default (0, an empty list) that the rule validators then report. Integer
// cells that had to be approximated are recorded in RowMeta.Unclean.
package normalize

import (
	"fmt"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// Clients normalizes client rows. A nil input yields nil (set absent); any
// other input yields a non-nil slice.
func Clients(rows []dataset.RawRecord) []dataset.Client {
	if rows == nil {
		return nil
	}
	out := make([]dataset.Client, len(rows))
	for i, row := range rows {
		out[i] = Client(i, row)
	}
	return out
}

// Client normalizes a single client row at index i.
func Client(i int, row dataset.RawRecord) dataset.Client {
	return dataset.Client{
		RowMeta:          meta(dataset.Clients, i, row),
		ClientID:         Text(row[dataset.FieldClientID]),
		ClientName:       Text(row[dataset.FieldClientName]),
		PriorityLevel:    Integer(row[dataset.FieldPriorityLevel]),
		RequestedTaskIDs: Strings(row[dataset.FieldRequestedTaskIDs]),
		GroupTag:         Text(row[dataset.FieldGroupTag]),
		AttributesJSON:   row[dataset.FieldAttributesJSON].Clone(),
	}
}

// Workers normalizes worker rows.
func Workers(rows []dataset.RawRecord) []dataset.Worker {
	if rows == nil {
		return nil
	}
	out := make([]dataset.Worker, len(rows))
	for i, row := range rows {
		out[i] = Worker(i, row)
	}
	return out
}

// Worker normalizes a single worker row at index i.
func Worker(i int, row dataset.RawRecord) dataset.Worker {
	return dataset.Worker{
		RowMeta:            meta(dataset.Workers, i, row),
		WorkerID:           Text(row[dataset.FieldWorkerID]),
		WorkerName:         Text(row[dataset.FieldWorkerName]),
		Skills:             Strings(row[dataset.FieldSkills]),
		AvailableSlots:     Ints(row[dataset.FieldAvailableSlots]),
		MaxLoadPerPhase:    Integer(row[dataset.FieldMaxLoadPerPhase]),
		WorkerGroup:        Text(row[dataset.FieldWorkerGroup]),
		QualificationLevel: Integer(row[dataset.FieldQualificationLevel]),
	}
}

// Tasks normalizes task rows.
func Tasks(rows []dataset.RawRecord) []dataset.Task {
	if rows == nil {
		return nil
	}
	out := make([]dataset.Task, len(rows))
	for i, row := range rows {
		out[i] = Task(i, row)
	}
	return out
}

// Task normalizes a single task row at index i.
func Task(i int, row dataset.RawRecord) dataset.Task {
	return dataset.Task{
		RowMeta:         meta(dataset.Tasks, i, row),
		TaskID:          Text(row[dataset.FieldTaskID]),
		TaskName:        Text(row[dataset.FieldTaskName]),
		Category:        Text(row[dataset.FieldCategory]),
		Duration:        Integer(row[dataset.FieldDuration]),
		RequiredSkills:  Strings(row[dataset.FieldRequiredSkills]),
		PreferredPhases: Ints(row[dataset.FieldPreferredPhases]),
		MaxConcurrent:   Integer(row[dataset.FieldMaxConcurrent]),
	}
}

// Records normalizes rows of any entity type behind the Record interface.
func Records(entity dataset.EntityType, rows []dataset.RawRecord) ([]dataset.Record, error) {
	switch entity {
	case dataset.Clients:
		return dataset.Records(Clients(rows)), nil
	case dataset.Workers:
		return dataset.Records(Workers(rows)), nil
	case dataset.Tasks:
		return dataset.Records(Tasks(rows)), nil
	default:
		return nil, fmt.Errorf("normalize: unknown entity type %q", entity)
	}
}

func meta(entity dataset.EntityType, i int, row dataset.RawRecord) dataset.RowMeta {
	m := dataset.RowMeta{Index: i, Present: make(map[string]bool, len(row))}
	for k := range row {
		m.Present[k] = true
	}
	for _, field := range dataset.MustSchema(entity).Fields {
		if field.Class != dataset.ClassInteger {
			continue
		}
		if v, ok := row[field.Name]; ok && !Integral(v) {
			if m.Unclean == nil {
				m.Unclean = make(map[string]dataset.Value)
			}
			m.Unclean[field.Name] = v.Clone()
		}
	}
	return m
}
