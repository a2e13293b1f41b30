package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/diagnostics"
	"github.com/Mahi3005/data-alchemist/pkg/normalize"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/tracing"
	"github.com/Mahi3005/data-alchemist/pkg/validator"
)

const tracerName = "github.com/Mahi3005/data-alchemist/pkg/engine"

// Pass names reported to observers and spans.
const (
	PassEntity      = "entity"
	PassConsistency = "consistency"
)

// Observer receives timing and outcome events. metrics.Collector implements it.
// The consistency pass is reported with an empty entity type.
type Observer interface {
	ObservePass(entity dataset.EntityType, pass string, elapsed time.Duration)
	ObserveReport(r *Report)
	ObserveFix(kind diagnostics.Kind, applied bool)
}

type noopObserver struct{}

func (noopObserver) ObservePass(dataset.EntityType, string, time.Duration) {}
func (noopObserver) ObserveReport(*Report)                                 {}
func (noopObserver) ObserveFix(diagnostics.Kind, bool)                     {}

// Options configures an Engine.
type Options struct {
	// Parallel runs the per-entity passes concurrently. Default: true via DefaultOptions.
	Parallel bool

	// MaxWorkers bounds concurrent per-entity passes. 0 means one per entity type.
	MaxWorkers int

	// Checks are extra cross-entity checks appended after the built-in ones.
	Checks []validator.Check

	Logger   *slog.Logger
	Observer Observer

	// TracerProvider supplies the engine's tracer. Default: the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultOptions returns the options used by New when none are given.
func DefaultOptions() Options {
	return Options{Parallel: true}
}

// Engine runs the normalize, validate, cross-check pipeline. It keeps no
// state between runs and is safe for concurrent use.
type Engine struct {
	validator *validator.Validator
	opts      Options
	logger    *slog.Logger
	observer  Observer
	tracer    trace.Tracer
}

// New creates an engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	provider := opts.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Engine{
		validator: validator.NewValidator(opts.Checks...),
		opts:      opts,
		logger:    logger.With("component", "engine"),
		observer:  observer,
		tracer:    provider.Tracer(tracerName),
	}
}

// Input holds the raw rows of each entity set. A nil slice means the set
// has not been supplied.
type Input struct {
	Clients []dataset.RawRecord `json:"clients"`
	Workers []dataset.RawRecord `json:"workers"`
	Tasks   []dataset.RawRecord `json:"tasks"`
}

// Rows returns the rows for an entity type.
func (in Input) Rows(entity dataset.EntityType) []dataset.RawRecord {
	switch entity {
	case dataset.Clients:
		return in.Clients
	case dataset.Workers:
		return in.Workers
	case dataset.Tasks:
		return in.Tasks
	default:
		return nil
	}
}

// entityResult is the outcome of normalizing and validating one entity set.
type entityResult struct {
	entity  dataset.EntityType
	present bool
	clients []dataset.Client
	workers []dataset.Worker
	tasks   []dataset.Task
	diags   []diagnostics.Diagnostic
}

func (r entityResult) apply(sets *validator.EntitySets) {
	switch r.entity {
	case dataset.Clients:
		sets.Clients = r.clients
	case dataset.Workers:
		sets.Workers = r.workers
	case dataset.Tasks:
		sets.Tasks = r.tasks
	}
}

// runState is the full outcome of a pipeline run, kept by sessions for
// incremental re-validation.
type runState struct {
	sets  validator.EntitySets
	local map[dataset.EntityType][]diagnostics.Diagnostic
	cross []diagnostics.Diagnostic
}

// Validate runs the full pipeline. Per-entity passes run concurrently when
// enabled and are joined before the consistency pass, which only runs when
// all three sets are present.
func (e *Engine) Validate(ctx context.Context, in Input) (*Report, error) {
	report, _, err := e.run(ctx, in)
	return report, err
}

func (e *Engine) run(ctx context.Context, in Input) (*Report, *runState, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Validate")
	defer span.End()
	start := time.Now()

	fail := func(err error) (*Report, *runState, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	results := make([]entityResult, len(dataset.EntityTypes))

	g, gctx := errgroup.WithContext(ctx)
	if e.opts.MaxWorkers > 0 {
		g.SetLimit(e.opts.MaxWorkers)
	}
	for i, entity := range dataset.EntityTypes {
		rows := in.Rows(entity)
		run := func() error {
			res, err := e.validateEntity(gctx, entity, rows)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		}
		if e.opts.Parallel {
			g.Go(run)
			continue
		}
		if err := run(); err != nil {
			return fail(err)
		}
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	state := &runState{local: make(map[dataset.EntityType][]diagnostics.Diagnostic, len(results))}
	present := make(map[dataset.EntityType]bool, len(results))
	for _, res := range results {
		res.apply(&state.sets)
		state.local[res.entity] = res.diags
		present[res.entity] = res.present
	}

	cross, err := e.validateConsistency(ctx, state.sets)
	if err != nil {
		return fail(err)
	}
	state.cross = cross

	report := newReport(present, state.local, cross)
	report.Duration = time.Since(start)

	span.SetAttributes(
		tracing.AttrDiagnostics.Int(len(report.Diagnostics)),
		tracing.AttrErrors.Int(report.Summary.Errors),
		tracing.AttrWarnings.Int(report.Summary.Warnings),
		tracing.AttrCanProceed.Bool(report.CanProceed),
	)
	e.observer.ObserveReport(report)
	e.logger.InfoContext(ctx, "validation complete",
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"can_proceed", report.CanProceed,
		"duration", report.Duration,
	)

	return report, state, nil
}

// validateEntity normalizes one entity set and runs the structural and rule
// passes over it. A nil rows slice yields an absent result.
func (e *Engine) validateEntity(ctx context.Context, entity dataset.EntityType, rows []dataset.RawRecord) (entityResult, error) {
	res := entityResult{entity: entity}
	if rows == nil {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	_, span := e.tracer.Start(ctx, "engine.validateEntity",
		trace.WithAttributes(tracing.EntityAttributes(entity, len(rows))...))
	defer span.End()
	start := time.Now()

	res.present = true
	var records []dataset.Record
	switch entity {
	case dataset.Clients:
		res.clients = normalize.Clients(rows)
		records = dataset.Records(res.clients)
	case dataset.Workers:
		res.workers = normalize.Workers(rows)
		records = dataset.Records(res.workers)
	case dataset.Tasks:
		res.tasks = normalize.Tasks(rows)
		records = dataset.Records(res.tasks)
	default:
		return res, fmt.Errorf("engine: unknown entity type %q", entity)
	}

	diags, err := e.validator.ValidateEntity(entity, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	res.diags = diags

	elapsed := time.Since(start)
	e.observer.ObservePass(entity, PassEntity, elapsed)
	span.SetAttributes(tracing.AttrDiagnostics.Int(len(diags)))
	e.logger.DebugContext(ctx, "entity pass complete",
		"entity_type", entity,
		"rows", len(rows),
		"diagnostics", len(diags),
		"duration", elapsed,
	)
	return res, nil
}

// validateConsistency runs the cross-entity pass when all three sets exist.
func (e *Engine) validateConsistency(ctx context.Context, sets validator.EntitySets) ([]diagnostics.Diagnostic, error) {
	if !sets.Complete() {
		e.logger.DebugContext(ctx, "skipping consistency pass, entity sets incomplete")
		return nil, nil
	}

	_, span := e.tracer.Start(ctx, "engine.validateConsistency",
		trace.WithAttributes(tracing.AttrChecks.StringSlice(e.validator.ConsistencyChecks())))
	defer span.End()
	start := time.Now()

	diags, err := e.validator.ValidateConsistency(sets)
	if err != nil {
		return nil, fmt.Errorf("consistency pass: %w", err)
	}

	e.observer.ObservePass("", PassConsistency, time.Since(start))
	span.SetAttributes(tracing.AttrDiagnostics.Int(len(diags)))
	return diags, nil
}
