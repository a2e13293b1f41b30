package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/cli"
	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
	"github.com/Mahi3005/data-alchemist/pkg/ingest"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
)

const defaultConfigFile = "alchemist.yaml"

// appEnv is what every command needs once flags are parsed.
type appEnv struct {
	cfg        *config.Config
	configPath string // Empty when running on defaults
	logger     *slog.Logger
	level      *slog.LevelVar
	logLevel   string // Set from flags; wins over the file on reload
	stdout     io.Writer
	stderr     io.Writer
}

// newAppEnv loads the configuration named by --config and builds the logger.
// A missing default config file is not an error; the defaults apply.
func newAppEnv(cmd *cobra.Command) (*appEnv, error) {
	path := cfgFile
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if f := cmd.Flag("config"); f == nil || !f.Changed {
			path = ""
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	var logLevel string
	if verbose {
		logLevel = "debug"
		cfg.Telemetry.Logging.Level = logLevel
	}
	config.SetConfig(cfg)

	env := &appEnv{
		cfg:        cfg,
		configPath: path,
		level:      new(slog.LevelVar),
		logLevel:   logLevel,
		stdout:     cmd.OutOrStdout(),
		stderr:     cmd.ErrOrStderr(),
	}
	if err := env.buildLogger(); err != nil {
		return nil, err
	}
	return env, nil
}

// buildLogger replaces the logger from the current logging section.
func (a *appEnv) buildLogger() error {
	lc := logging.FromConfig(a.cfg.Telemetry.Logging, a.stderr)
	lc.LevelVar = a.level
	logger, err := logging.New(lc)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// reloadConfig re-reads the config file and applies its log level to the
// running logger. Other settings take effect on restart.
func (a *appEnv) reloadConfig() error {
	if a.configPath == "" {
		return errors.New("no config file to reload")
	}
	if err := config.ReloadConfig(a.configPath); err != nil {
		return err
	}
	level := config.MustGetConfig().Telemetry.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	return logging.SetLevel(a.level, level)
}

// ingestOptions maps the ingest section onto reader options.
func (a *appEnv) ingestOptions() ingest.Options {
	opts := ingest.DefaultOptions()
	if r, _ := utf8.DecodeRuneInString(a.cfg.Ingest.CSVDelimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	opts.Sheet = a.cfg.Ingest.Sheet
	return opts
}

// newEngine builds an engine from the validation section.
func (a *appEnv) newEngine(observer engine.Observer) *engine.Engine {
	return engine.New(engine.Options{
		Parallel:   a.cfg.Validation.Parallel,
		MaxWorkers: a.cfg.Validation.MaxWorkers,
		Logger:     a.logger,
		Observer:   observer,
	})
}

// openHistory opens the configured run history. It fails when history is disabled.
func (a *appEnv) openHistory() (history.Storage, error) {
	if !a.cfg.History.Enabled {
		return nil, cli.NewConfigError("history.enabled", "run history is disabled")
	}
	store, err := history.Open(a.cfg.History)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, nil
}

// loadInput reads every named entity file. Entities without a path stay nil
// so the engine treats them as not supplied.
func loadInput(sources map[dataset.EntityType]string, opts ingest.Options) (engine.Input, error) {
	var in engine.Input
	for _, entity := range dataset.EntityTypes {
		path, ok := sources[entity]
		if !ok {
			continue
		}
		rows, err := ingest.LoadFile(path, opts)
		if err != nil {
			return engine.Input{}, fmt.Errorf("failed to load %s: %w", entity, err)
		}
		if rows == nil {
			rows = []dataset.RawRecord{}
		}
		switch entity {
		case dataset.Clients:
			in.Clients = rows
		case dataset.Workers:
			in.Workers = rows
		case dataset.Tasks:
			in.Tasks = rows
		}
	}
	return in, nil
}
