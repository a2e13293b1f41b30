package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mahi3005/data-alchemist/pkg/autofix"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/validator"
)

var (
	// ErrEntityNotLoaded is returned when editing an entity set that was never loaded.
	ErrEntityNotLoaded = errors.New("engine: entity set not loaded")

	// ErrRowOutOfRange is returned when an edit addresses a row that does not exist.
	ErrRowOutOfRange = errors.New("engine: row index out of range")

	// ErrUnknownDiagnostic is returned when a fix names a diagnostic the session does not hold.
	ErrUnknownDiagnostic = errors.New("engine: unknown diagnostic")
)

// CellEdit is a single user edit of one field in one row.
type CellEdit struct {
	EntityType dataset.EntityType `json:"entityType"`
	RowIndex   int                `json:"rowIndex"`
	Field      string             `json:"field"`
	Value      dataset.Value      `json:"value"`
}

// Session holds the raw entity sets of one ingestion and their diagnostic
// buckets. Edits and fixes re-validate only the owning entity set and then
// re-run the cross-entity pass once all three sets exist.
type Session struct {
	mu sync.Mutex

	engine *Engine
	raw    map[dataset.EntityType][]dataset.RawRecord
	local  map[dataset.EntityType][]diagnostics.Diagnostic
	sets   validator.EntitySets
	cross  []diagnostics.Diagnostic
	report *Report
}

// NewSession creates an empty session bound to an engine.
func NewSession(e *Engine) *Session {
	s := &Session{engine: e}
	s.resetLocked()
	return s
}

// Load replaces an entity set and re-validates it.
func (s *Session) Load(ctx context.Context, entity dataset.EntityType, rows []dataset.RawRecord) (*Report, error) {
	if _, err := dataset.SchemaFor(entity); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dataset.RawRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw[entity] = dataset.CloneRows(rows)
	return s.revalidateLocked(ctx, entity)
}

// LoadInput loads every non-nil set of in.
func (s *Session) LoadInput(ctx context.Context, in Input) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entity := range dataset.EntityTypes {
		if rows := in.Rows(entity); rows != nil {
			s.raw[entity] = dataset.CloneRows(rows)
		}
	}
	report, state, err := s.engine.run(ctx, s.inputLocked())
	if err != nil {
		return nil, err
	}
	s.sets = state.sets
	s.local = state.local
	s.cross = state.cross
	s.report = report
	return report, nil
}

// Edit applies a cell edit and re-validates the owning entity set.
func (s *Session) Edit(ctx context.Context, edit CellEdit) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.raw[edit.EntityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotLoaded, edit.EntityType)
	}
	if edit.RowIndex < 0 || edit.RowIndex >= len(rows) {
		return nil, fmt.Errorf("%w: %s row %d", ErrRowOutOfRange, edit.EntityType, edit.RowIndex)
	}
	if edit.Field == "" {
		return nil, errors.New("engine: edit field must not be empty")
	}

	row := rows[edit.RowIndex].Clone()
	if row == nil {
		row = dataset.RawRecord{}
	}
	row[edit.Field] = edit.Value.Clone()
	rows[edit.RowIndex] = row

	return s.revalidateLocked(ctx, edit.EntityType)
}

// ApplyFix applies the auto-fix for the diagnostic with the given ID.
// The returned bool reports whether a remedy applied.
func (s *Session) ApplyFix(ctx context.Context, id string) (*Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := diagnostics.Find(s.report.Diagnostics, id)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownDiagnostic, id)
	}

	rows := s.raw[d.EntityType]
	row := d.Row()
	if row < 0 || row >= len(rows) {
		s.engine.observer.ObserveFix(d.Kind, false)
		return s.report, false, nil
	}

	fixed, applied := autofix.Fix(rows[row], d)
	s.engine.observer.ObserveFix(d.Kind, applied)
	if !applied {
		return s.report, false, nil
	}
	rows[row] = fixed

	report, err := s.revalidateLocked(ctx, d.EntityType)
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

// ApplyAllFixes applies every fixable diagnostic of one entity set and
// re-validates it once. It returns the number of fixes applied.
func (s *Session) ApplyAllFixes(ctx context.Context, entity dataset.EntityType) (*Report, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.raw[entity]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrEntityNotLoaded, entity)
	}

	fixed, applied := autofix.FixAll(entity, rows, s.report.Diagnostics)
	for _, res := range applied {
		if d, ok := diagnostics.Find(s.report.Diagnostics, res.DiagnosticID); ok {
			s.engine.observer.ObserveFix(d.Kind, true)
		}
	}
	if len(applied) == 0 {
		return s.report, 0, nil
	}
	s.raw[entity] = fixed

	report, err := s.revalidateLocked(ctx, entity)
	if err != nil {
		return nil, 0, err
	}
	return report, len(applied), nil
}

// Reset discards every loaded set and diagnostic.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Report returns the latest report.
func (s *Session) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Diagnostics returns the latest flat diagnostic list.
func (s *Session) Diagnostics() []diagnostics.Diagnostic {
	return s.Report().Diagnostics
}

// Bucket returns the diagnostics routed to one entity set.
func (s *Session) Bucket(entity dataset.EntityType) []diagnostics.Diagnostic {
	return s.Report().Bucket(entity)
}

// CanProceed reports the downstream gate for the current state.
func (s *Session) CanProceed() bool {
	return s.Report().CanProceed
}

// Rows returns a copy of the current raw rows of an entity set.
func (s *Session) Rows(entity dataset.EntityType) []dataset.RawRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dataset.CloneRows(s.raw[entity])
}

// Input returns a copy of every loaded set.
func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputLocked()
	return Input{
		Clients: dataset.CloneRows(in.Clients),
		Workers: dataset.CloneRows(in.Workers),
		Tasks:   dataset.CloneRows(in.Tasks),
	}
}

func (s *Session) resetLocked() {
	s.raw = make(map[dataset.EntityType][]dataset.RawRecord)
	s.local = make(map[dataset.EntityType][]diagnostics.Diagnostic)
	s.sets = validator.EntitySets{}
	s.cross = nil
	s.report = newReport(map[dataset.EntityType]bool{}, s.local, nil)
}

func (s *Session) inputLocked() Input {
	return Input{
		Clients: s.raw[dataset.Clients],
		Workers: s.raw[dataset.Workers],
		Tasks:   s.raw[dataset.Tasks],
	}
}

// revalidateLocked re-normalizes and re-validates one entity set, then the
// cross-entity pass when all three sets exist.
func (s *Session) revalidateLocked(ctx context.Context, entity dataset.EntityType) (*Report, error) {
	res, err := s.engine.validateEntity(ctx, entity, s.raw[entity])
	if err != nil {
		return nil, err
	}
	res.apply(&s.sets)
	s.local[entity] = res.diags

	cross, err := s.engine.validateConsistency(ctx, s.sets)
	if err != nil {
		return nil, err
	}
	s.cross = cross

	s.report = newReport(s.presentLocked(), s.local, s.cross)
	s.engine.observer.ObserveReport(s.report)
	return s.report, nil
}

func (s *Session) presentLocked() map[dataset.EntityType]bool {
	present := make(map[dataset.EntityType]bool, len(s.raw))
	for entity := range s.raw {
		present[entity] = true
	}
	return present
}
