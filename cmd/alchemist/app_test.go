package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/logging"
)

// withConfigFlag returns a command carrying a --config flag and restores
// the global flag values afterwards.
func withConfigFlag(t *testing.T, path string) *cobra.Command {
	t.Helper()
	origFile, origVerbose := cfgFile, verbose
	t.Cleanup(func() { cfgFile, verbose = origFile, origVerbose })

	cfgFile = path
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&cfgFile, "config", path, "")
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd
}

func TestNewAppEnv_MissingDefaultConfig(t *testing.T) {
	cmd := withConfigFlag(t, filepath.Join(t.TempDir(), defaultConfigFile))

	env, err := newAppEnv(cmd)
	if err != nil {
		t.Fatalf("newAppEnv() error = %v", err)
	}
	if env.cfg.Server.ListenAddress != config.DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default", env.cfg.Server.ListenAddress)
	}
	if config.GetConfig() != env.cfg {
		t.Error("configuration not installed process-wide")
	}
}

func TestNewAppEnv_ExplicitMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	cmd := withConfigFlag(t, path)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}

	if _, err := newAppEnv(cmd); err == nil {
		t.Error("expected error for an explicitly named missing config")
	}
}

func TestNewAppEnv_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alchemist.yaml")
	yaml := "ingest:\n  csv_delimiter: \";\"\n  sheet: Data\nhistory:\n  backend: memory\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := withConfigFlag(t, path)
	verbose = true

	env, err := newAppEnv(cmd)
	if err != nil {
		t.Fatalf("newAppEnv() error = %v", err)
	}
	if env.cfg.History.Backend != "memory" {
		t.Errorf("Backend = %q", env.cfg.History.Backend)
	}
	if env.cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("--verbose did not raise the log level: %q", env.cfg.Telemetry.Logging.Level)
	}

	opts := env.ingestOptions()
	if opts.Delimiter != ';' || opts.Sheet != "Data" {
		t.Errorf("ingestOptions() = %+v", opts)
	}
}

func TestLoadInput(t *testing.T) {
	app := newTestApp(t)
	sources := map[dataset.EntityType]string{
		dataset.Clients: app.write(t, "clients.csv", cleanClientsCSV),
		dataset.Tasks:   app.write(t, "tasks.json", "[]"),
	}

	in, err := loadInput(sources, app.env.ingestOptions())
	if err != nil {
		t.Fatalf("loadInput() error = %v", err)
	}
	if len(in.Clients) != 1 {
		t.Errorf("clients = %d rows, want 1", len(in.Clients))
	}
	if in.Workers != nil {
		t.Error("workers were not supplied and must stay nil")
	}
	if in.Tasks == nil || len(in.Tasks) != 0 {
		t.Errorf("an empty tasks file must load as an empty set, got %v", in.Tasks)
	}
}

func TestRunServe_DryRun(t *testing.T) {
	app := newTestApp(t)
	opts := serveOptions{listenAddress: "127.0.0.1:0", logLevel: "warn", dryRun: true}

	if err := runServe(context.Background(), app.env, opts); err != nil {
		t.Fatalf("runServe() error = %v", err)
	}
	if got := app.stdout.String(); got != "Configuration valid\n" {
		t.Errorf("output = %q", got)
	}
	if app.env.cfg.Server.ListenAddress != "127.0.0.1:0" {
		t.Error("--listen not applied")
	}

	if err := runServe(context.Background(), app.env, serveOptions{logLevel: "loud", dryRun: true}); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	app := newTestApp(t)
	app.env.cfg.History.Backend = "memory"
	app.env.cfg.Server.ListenAddress = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, app.env, serveOptions{}) }()

	waitFor(t, func() bool { return strings.Contains(app.stderr.String(), "listen:   127.0.0.1:0") })
	cancel()

	if err := <-done; err != nil {
		t.Errorf("runServe() error = %v", err)
	}
}

func TestReloadConfig(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		rewrite   string
		override  string
		noPath    bool
		wantErr   bool
		wantLevel slog.Level
	}{
		{"applies new level", "info", "telemetry:\n  logging:\n    level: warn\n", "", false, false, slog.LevelWarn},
		{"flag override wins", "info", "telemetry:\n  logging:\n    level: error\n", "debug", false, false, slog.LevelDebug},
		{"invalid file keeps level", "info", "telemetry:\n  logging:\n    level: loud\n", "", false, true, slog.LevelInfo},
		{"no config file", "info", "", "", true, true, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := config.GetConfig()
			t.Cleanup(func() { config.SetConfig(prev) })

			app := newTestApp(t)
			if err := logging.SetLevel(app.env.level, tt.initial); err != nil {
				t.Fatal(err)
			}
			app.env.logLevel = tt.override
			if !tt.noPath {
				app.env.configPath = app.write(t, "alchemist.yaml", tt.rewrite)
			}

			err := app.env.reloadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("reloadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := app.env.level.Level(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestReloadOnSignal(t *testing.T) {
	prev := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(prev) })

	app := newTestApp(t)
	app.env.configPath = app.write(t, "alchemist.yaml", "telemetry:\n  logging:\n    level: error\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	go reloadOnSignal(ctx, app.env, sig)

	sig <- syscall.SIGHUP
	waitFor(t, func() bool { return app.env.level.Level() == slog.LevelError })
	if config.GetConfig().Telemetry.Logging.Level != "error" {
		t.Error("reloaded configuration not installed process-wide")
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	for _, want := range []string{"Data Alchemist " + Version, "Git Commit: " + GitCommit, runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"validate": false, "fix": false, "serve": false, "history": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}

	sub := map[string]bool{}
	for _, c := range historyCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"list", "show", "delete", "prune"} {
		if !sub[name] {
			t.Errorf("history %s not registered", name)
		}
	}
}
