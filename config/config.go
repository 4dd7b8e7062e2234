// Package config loads the playback core's tunables from TOML files,
// falling back to the defaults the sync and attempt machinery were tuned
// with.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Sync    SyncConfig    `koanf:"sync"`
	Attempt AttemptConfig `koanf:"attempt"`
	Device  DeviceConfig  `koanf:"device"`
}

// SyncConfig tunes the drift monitor.
type SyncConfig struct {
	// DriftThresholdMs is the drift above which the slave is corrected.
	// Below ~300ms correction causes audible stutter; above it the
	// audio/video desync becomes perceptible in presentation mode.
	DriftThresholdMs int `koanf:"drift_threshold_ms"`
	PollIntervalMs   int `koanf:"poll_interval_ms"`
	// EndOfStreamGuardMs disables correction when the slave would land
	// within this distance of the master's end, so a shorter slave is
	// never seeked past its own end while it is still loading.
	EndOfStreamGuardMs int `koanf:"end_of_stream_guard_ms"`
}

// AttemptConfig tunes the playback-attempt coordinator.
type AttemptConfig struct {
	StrategyTimeoutMs       int `koanf:"strategy_timeout_ms"`
	MobileStrategyTimeoutMs int `koanf:"mobile_strategy_timeout_ms"`
}

// DeviceConfig carries the device-detection collaborator's signals.
type DeviceConfig struct {
	// Mobile serializes secondary loading behind the primary and widens
	// the per-strategy timeout.
	Mobile bool `koanf:"mobile"`
}

// Default returns the configuration the core was tuned with.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			DriftThresholdMs:   300,
			PollIntervalMs:     1000,
			EndOfStreamGuardMs: 500,
		},
		Attempt: AttemptConfig{
			StrategyTimeoutMs:       2000,
			MobileStrategyTimeoutMs: 4000,
		},
	}
}

// Load reads config files in order of priority (last wins) and applies
// defaults for anything left unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/duostream/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "duostream", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Sync.DriftThresholdMs <= 0 {
		c.Sync.DriftThresholdMs = def.Sync.DriftThresholdMs
	}
	if c.Sync.PollIntervalMs <= 0 {
		c.Sync.PollIntervalMs = def.Sync.PollIntervalMs
	}
	if c.Sync.EndOfStreamGuardMs <= 0 {
		c.Sync.EndOfStreamGuardMs = def.Sync.EndOfStreamGuardMs
	}
	if c.Attempt.StrategyTimeoutMs <= 0 {
		c.Attempt.StrategyTimeoutMs = def.Attempt.StrategyTimeoutMs
	}
	if c.Attempt.MobileStrategyTimeoutMs <= 0 {
		c.Attempt.MobileStrategyTimeoutMs = def.Attempt.MobileStrategyTimeoutMs
	}
}

// DriftThreshold returns the drift threshold as a duration.
func (c *Config) DriftThreshold() time.Duration {
	return time.Duration(c.Sync.DriftThresholdMs) * time.Millisecond
}

// PollInterval returns the monitor tick interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalMs) * time.Millisecond
}

// EndOfStreamGuard returns the end-of-stream guard as a duration.
func (c *Config) EndOfStreamGuard() time.Duration {
	return time.Duration(c.Sync.EndOfStreamGuardMs) * time.Millisecond
}

// StrategyTimeout returns the per-strategy timeout for this device class.
func (c *Config) StrategyTimeout() time.Duration {
	ms := c.Attempt.StrategyTimeoutMs
	if c.Device.Mobile {
		ms = c.Attempt.MobileStrategyTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}
