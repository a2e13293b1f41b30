package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alchemist.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !cfg.Validation.Parallel {
		t.Error("parallel should default to true")
	}
	if !cfg.History.Enabled || cfg.History.Backend != DefaultHistoryBackend {
		t.Errorf("history defaults = %+v", cfg.History)
	}
	if cfg.Server.SessionTTL != DefaultSessionTTL {
		t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Tracing.Enabled {
		t.Error("metrics should default on and tracing off")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)
	if *cfg != first {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
validation:
  max_workers: 2
ingest:
  csv_delimiter: ";"
server:
  listen_address: "0.0.0.0:9090"
  session_ttl: 15m
history:
  backend: memory
telemetry:
  logging:
    level: debug
    format: console
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Validation.MaxWorkers != 2 || !cfg.Validation.Parallel {
		t.Errorf("validation = %+v", cfg.Validation)
	}
	if cfg.Ingest.CSVDelimiter != ";" {
		t.Errorf("csv delimiter = %q", cfg.Ingest.CSVDelimiter)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9090" || cfg.Server.SessionTTL != 15*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout default not applied: %v", cfg.Server.ReadTimeout)
	}
	if cfg.History.Backend != "memory" || !cfg.History.Enabled {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
validation:
  parallel: false
history:
  enabled: false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Validation.Parallel || cfg.History.Enabled {
		t.Error("explicit false values must survive defaults")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "server: [", "failed to parse"},
		{"bad backend", "history:\n  backend: postgres\n", "history.backend"},
		{"bad cron", "history:\n  prune_schedule: \"every day\"\n", "history.prune_schedule"},
		{"bad level", "telemetry:\n  logging:\n    level: trace\n", "telemetry.logging.level"},
		{"bad delimiter", "ingest:\n  csv_delimiter: \";;\"\n", "ingest.csv_delimiter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.ListenAddress = ""
	cfg.History.SQLiteDriver = "pgx"
	cfg.Telemetry.Tracing.SampleRatio = 2
	cfg.Telemetry.Metrics.Path = "metrics"

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"server.listen_address", "history.sqlite_driver", "telemetry.tracing.sample_ratio", "telemetry.metrics.path"} {
		if !fields[want] {
			t.Errorf("missing field error for %s (got %v)", want, fields)
		}
	}
	if !strings.Contains(verr.Error(), "4 errors") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("ALCHEMIST_SERVER_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("ALCHEMIST_VALIDATION_PARALLEL", "false")
	t.Setenv("ALCHEMIST_HISTORY_RETENTION_DAYS", "7")
	t.Setenv("ALCHEMIST_WATCH_DEBOUNCE", "250ms")
	t.Setenv("ALCHEMIST_TELEMETRY_TRACING_SAMPLE_RATIO", "0.5")
	t.Setenv("ALCHEMIST_SERVER_MAX_BODY_BYTES", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Validation.Parallel {
		t.Error("parallel override not applied")
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("retention days = %d", cfg.History.RetentionDays)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.5 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if cfg.Server.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("unparseable override should be ignored, got %d", cfg.Server.MaxBodyBytes)
	}
}

func TestLoadConfigWithEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("ALCHEMIST_HISTORY_BACKEND", "etcd")
	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("expected validation error after overrides")
	}
}

func TestSingleton(t *testing.T) {
	prev := GetConfig()
	t.Cleanup(func() { SetConfig(prev) })

	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig should panic when unset")
		}
	}()

	cfg := NewDefaultConfig()
	SetConfig(cfg)
	if GetConfig() != cfg || MustGetConfig() != cfg {
		t.Error("SetConfig not visible")
	}

	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:1\"\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatal(err)
	}
	if GetConfig().Server.ListenAddress != "127.0.0.1:1" {
		t.Error("ReloadConfig did not swap the config")
	}
	if err := ReloadConfig(writeConfig(t, "history:\n  backend: x\n")); err == nil {
		t.Error("expected reload error")
	}
	if GetConfig().Server.ListenAddress != "127.0.0.1:1" {
		t.Error("failed reload replaced the config")
	}

	SetConfig(nil)
	MustGetConfig()
}
