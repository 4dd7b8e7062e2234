package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesTunedValues(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 300*time.Millisecond, cfg.DriftThreshold())
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 500*time.Millisecond, cfg.EndOfStreamGuard())
	assert.Equal(t, 2*time.Second, cfg.StrategyTimeout())
	assert.False(t, cfg.Device.Mobile)
}

func TestStrategyTimeout_WidensOnMobile(t *testing.T) {
	cfg := Default()
	cfg.Device.Mobile = true

	assert.Equal(t, 4*time.Second, cfg.StrategyTimeout())
}

func TestApplyDefaults_FillsOnlyUnsetFields(t *testing.T) {
	cfg := &Config{}
	cfg.Sync.DriftThresholdMs = 450

	cfg.applyDefaults()

	assert.Equal(t, 450*time.Millisecond, cfg.DriftThreshold(), "explicit values survive")
	assert.Equal(t, time.Second, cfg.PollInterval(), "unset values get defaults")
	assert.Equal(t, 500*time.Millisecond, cfg.EndOfStreamGuard())
	assert.Equal(t, 2*time.Second, cfg.StrategyTimeout())
}

func TestLoad_ReadsConfigFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	toml := []byte("[sync]\ndrift_threshold_ms = 250\n\n[device]\nmobile = true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), toml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.DriftThreshold())
	assert.True(t, cfg.Device.Mobile)
	// Everything unset falls back to defaults.
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 4*time.Second, cfg.StrategyTimeout(), "mobile widens the strategy timeout")
}

func TestLoad_NoFilesYieldsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Sync, cfg.Sync)
	assert.Equal(t, Default().Attempt, cfg.Attempt)
}

// chdir switches the working directory for the test and restores it on
// cleanup; stand-in for testing.T.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
