package config

import (
	"fmt"
	"sync/atomic"
)

var current atomic.Pointer[Config]

// GetConfig returns the process-wide configuration, or nil before SetConfig.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process-wide configuration. Commands install the
// configuration they built from the file and flags.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig reloads path and swaps it in. On failure the previous
// configuration stays in place.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig is GetConfig that panics when nothing has been installed.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call SetConfig first")
	}
	return cfg
}
