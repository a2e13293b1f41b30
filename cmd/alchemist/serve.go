package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/cli"
	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
	"github.com/Mahi3005/data-alchemist/pkg/server"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/metrics"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/tracing"
)

// tracerShutdownTimeout bounds the final span flush.
const tracerShutdownTimeout = 5 * time.Second

type serveOptions struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveFlags serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP API",
	Long: `Start the HTTP API with the specified configuration.

The server validates uploaded entity sets, keeps editing sessions with
incremental re-validation and auto-fix, and exposes recorded runs, health
probes and Prometheus metrics. Old runs are pruned on the configured
cron schedule.

Examples:
  # Start with default config
  alchemist serve

  # Override listen address
  alchemist serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  alchemist serve --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		ctx, stop := cli.SetupSignalHandler(cmd.Context())
		defer stop()
		return runServe(ctx, env, serveFlags)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(ctx context.Context, env *appEnv, opts serveOptions) error {
	cfg := env.cfg
	if opts.listenAddress != "" {
		cfg.Server.ListenAddress = opts.listenAddress
	}
	if opts.logLevel != "" {
		cfg.Telemetry.Logging.Level = opts.logLevel
		if err := logging.SetLevel(env.level, opts.logLevel); err != nil {
			return cli.NewConfigError("log-level", err.Error())
		}
		env.logLevel = opts.logLevel
	}

	if opts.dryRun {
		fmt.Fprintln(env.stdout, "Configuration valid")
		return nil
	}

	printBanner(env, cfg)

	var collector *metrics.Collector
	var observer engine.Observer
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		observer = collector
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			env.logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var store history.Storage
	var retention *history.Scheduler
	if cfg.History.Enabled {
		store, err = env.openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		scheduler := history.NewScheduler(history.NewPruner(store, history.RetentionFromConfig(cfg.History)))
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewConfigError("history.prune_schedule", err.Error())
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			retention = scheduler
			fmt.Fprintf(env.stderr, "  pruning:  next at %s\n", next.Format(time.RFC3339))
		}
	}

	hangup, stopHangup := cli.NotifyReload()
	defer stopHangup()
	go reloadOnSignal(ctx, env, hangup)

	srv, err := server.New(cfg, server.Deps{
		Engine:    env.newEngine(observer),
		History:   store,
		Metrics:   collector,
		Tracer:    tracer,
		Retention: retention,
		Logger:    env.logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// reloadOnSignal reloads the config file each time sig fires until ctx ends.
func reloadOnSignal(ctx context.Context, env *appEnv, sig <-chan os.Signal) {
	logger := env.logger
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := env.reloadConfig(); err != nil {
				logger.Warn("config reload failed, keeping previous configuration", "error", err)
				continue
			}
			logger.Info("configuration reloaded", "path", env.configPath)
		}
	}
}

func printBanner(env *appEnv, cfg *config.Config) {
	w := env.stderr
	fmt.Fprintf(w, "Data Alchemist %s\n", Version)
	fmt.Fprintf(w, "  listen:   %s\n", cfg.Server.ListenAddress)
	switch {
	case !cfg.History.Enabled:
		fmt.Fprintln(w, "  history:  disabled")
	case cfg.History.Backend == "memory":
		fmt.Fprintln(w, "  history:  memory")
	default:
		fmt.Fprintf(w, "  history:  %s\n", cfg.History.SQLitePath)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "  metrics:  %s\n", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(w, "  tracing:  %s\n", cfg.Telemetry.Tracing.Endpoint)
	}
}
