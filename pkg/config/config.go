package config

import "time"

// Config is the root configuration structure for the alchemist engine,
// its CLI and its HTTP API.
type Config struct {
	// Validation controls how the engine runs its passes.
	Validation ValidationConfig `yaml:"validation"`

	// Ingest controls how entity files are read.
	Ingest IngestConfig `yaml:"ingest"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// History contains run-history storage and retention configuration.
	History HistoryConfig `yaml:"history"`

	// Watch contains file watch configuration for validate --watch.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ValidationConfig controls the validation engine.
type ValidationConfig struct {
	// Parallel runs the per-entity passes concurrently.
	// Default: true
	Parallel bool `yaml:"parallel"`

	// MaxWorkers bounds concurrent per-entity passes. 0 means one per entity set.
	// Default: 0
	MaxWorkers int `yaml:"max_workers"`

	// StrictWarnings makes warnings fail the CLI exit status like errors do.
	// Default: false
	StrictWarnings bool `yaml:"strict_warnings"`
}

// IngestConfig controls file readers.
type IngestConfig struct {
	// CSVDelimiter is the single-character CSV field separator.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// Sheet names the XLSX sheet to read. Empty reads the first sheet.
	Sheet string `yaml:"sheet"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// SessionTTL is how long an idle session is kept.
	// Default: 1h
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// HistoryConfig contains run-history configuration.
type HistoryConfig struct {
	// Enabled records every validation run.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	// Default: "data/history.db"
	SQLitePath string `yaml:"sqlite_path"`

	// SQLiteDriver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	SQLiteDriver string `yaml:"sqlite_driver"`

	// RetentionDays deletes runs older than this many days. 0 keeps runs forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRuns keeps at most this many runs. 0 means unlimited.
	// Default: 0
	MaxRuns int `yaml:"max_runs"`

	// PruneSchedule is the cron expression for the retention job.
	// Default: "0 3 * * *" (3 AM daily)
	PruneSchedule string `yaml:"prune_schedule"`
}

// WatchConfig contains file watch configuration.
type WatchConfig struct {
	// Debounce coalesces bursts of file events.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "alchemist"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "data-alchemist"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`
}
