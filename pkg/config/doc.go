// Package config loads, validates and shares the alchemist configuration.
//
// Configuration comes from an optional YAML file laid over built-in
// defaults, followed by ALCHEMIST_* environment variable overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("alchemist.yaml")
//
// For example, ALCHEMIST_SERVER_LISTEN_ADDRESS overrides
// server.listen_address and ALCHEMIST_HISTORY_BACKEND overrides
// history.backend.
//
// # Example Configuration
//
//	validation:
//	  parallel: true
//	ingest:
//	  csv_delimiter: ";"
//	server:
//	  listen_address: "0.0.0.0:8080"
//	  session_ttl: 30m
//	history:
//	  backend: sqlite
//	  sqlite_path: data/history.db
//	  retention_days: 14
//	  prune_schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: debug
//	    format: console
//
// Validation collects every problem into a ValidationError:
//
//	configuration validation failed with 2 errors:
//	  - history.backend: invalid backend "postgres": must be 'memory' or 'sqlite'
//	  - telemetry.logging.level: invalid logging level "trace": ...
//
// The singleton helpers (SetConfig, GetConfig, ReloadConfig) give the CLI a
// process-wide instance. Tests should pass explicit Config values instead.
package config
