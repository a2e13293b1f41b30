package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/cli"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
	"github.com/Mahi3005/data-alchemist/pkg/ingest"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
	"github.com/Mahi3005/data-alchemist/pkg/watch"
)

type validateOptions struct {
	clients  string
	workers  string
	tasks    string
	format   string
	failOn   string
	watch    bool
	noRecord bool
}

var validateFlags validateOptions

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate client, worker and task files",
	Long: `Validate entity files and print every diagnostic.

Files may be CSV, XLSX, JSON or YAML; the format follows the extension.
Any subset of the three entities may be given. Cross-entity checks run
only when all three are present, and a run can proceed only then.

Exit status is non-zero when diagnostics reach the --fail-on level:
  error    - any error (default)
  warning  - any error or warning (default when validation.strict_warnings is set)
  none     - never

Examples:
  # Validate a full dataset
  alchemist validate --clients clients.csv --workers workers.csv --tasks tasks.csv

  # Machine-readable output
  alchemist validate --clients clients.csv --format json

  # Re-validate on every save
  alchemist validate --clients c.csv --workers w.csv --tasks t.csv --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		opts := validateFlags
		if !cmd.Flags().Changed("fail-on") && env.cfg.Validation.StrictWarnings {
			opts.failOn = string(cli.FailOnWarning)
		}
		return runValidate(cmd.Context(), env, opts)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.clients, "clients", "", "clients file")
	validateCmd.Flags().StringVar(&validateFlags.workers, "workers", "", "workers file")
	validateCmd.Flags().StringVar(&validateFlags.tasks, "tasks", "", "tasks file")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format (text, json, csv)")
	validateCmd.Flags().StringVar(&validateFlags.failOn, "fail-on", "error", "exit non-zero on (error, warning, none)")
	validateCmd.Flags().BoolVarP(&validateFlags.watch, "watch", "w", false, "re-validate when an input file changes")
	validateCmd.Flags().BoolVar(&validateFlags.noRecord, "no-record", false, "do not record the run in history")
}

// validation is one configured validate invocation. run may be called
// repeatedly in watch mode.
type validation struct {
	engine    *engine.Engine
	sources   map[dataset.EntityType]string
	ingest    ingest.Options
	history   history.Storage
	formatter cli.Formatter
	out       io.Writer
	logger    *slog.Logger
}

func (v *validation) run(ctx context.Context) (*engine.Report, error) {
	started := time.Now()

	in, err := loadInput(v.sources, v.ingest)
	if err != nil {
		return nil, err
	}
	report, err := v.engine.Validate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("validation failed to run: %w", err)
	}

	if v.history != nil {
		run := history.NewRun(report, v.sources, started)
		if err := v.history.Save(ctx, run); err != nil {
			v.logger.Warn("failed to record run", "error", err)
		} else {
			v.logger.DebugContext(logging.WithRunID(ctx, run.ID), "run recorded")
		}
	}

	if err := v.formatter.Report(v.out, report); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

func runValidate(ctx context.Context, env *appEnv, opts validateOptions) error {
	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}
	failOn, err := cli.ParseFailOn(opts.failOn)
	if err != nil {
		return err
	}

	sources := make(map[dataset.EntityType]string)
	for entity, path := range map[dataset.EntityType]string{
		dataset.Clients: opts.clients,
		dataset.Workers: opts.workers,
		dataset.Tasks:   opts.tasks,
	} {
		if path != "" {
			sources[entity] = path
		}
	}
	if len(sources) == 0 {
		return cli.NewConfigError("clients", "at least one of --clients, --workers or --tasks is required")
	}

	v := &validation{
		engine:    env.newEngine(nil),
		sources:   sources,
		ingest:    env.ingestOptions(),
		formatter: cli.NewFormatter(format),
		out:       env.stdout,
		logger:    env.logger,
	}
	if env.cfg.History.Enabled && !opts.noRecord {
		store, err := env.openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		v.history = store
	}

	if opts.watch {
		return watchValidate(ctx, env, v)
	}

	report, err := v.run(ctx)
	if err != nil {
		return err
	}
	return failOn.Check(report)
}

// watchValidate validates once, then again after every burst of changes to
// the input files, until interrupted.
func watchValidate(ctx context.Context, env *appEnv, v *validation) error {
	ctx, stop := cli.SetupSignalHandler(ctx)
	defer stop()

	files := make([]string, 0, len(v.sources))
	for _, entity := range dataset.EntityTypes {
		if path, ok := v.sources[entity]; ok {
			files = append(files, path)
		}
	}

	w, err := watch.New(watch.Config{Files: files, Debounce: env.cfg.Watch.Debounce}, env.logger)
	if err != nil {
		return fmt.Errorf("failed to watch inputs: %w", err)
	}

	if _, err := v.run(ctx); err != nil {
		env.logger.Error("validation failed", "error", err)
	}

	return w.Watch(ctx, func(ctx context.Context, changed []string) error {
		env.logger.Info("inputs changed, re-validating", "files", changed)
		fmt.Fprintln(v.out)
		_, err := v.run(ctx)
		return err
	})
}
