package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	t.Setenv("FLAGKEEP_CONFIG_PATH", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLAGKEEP_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "open-source", cfg.Edition)
	assert.Equal(t, 1000, cfg.SegmentValuesLimit)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, "default", cfg.Source("segment_values_limit"))
	assert.False(t, cfg.IsEnabled(FlagDoraMetrics))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	writeConfig(t, `
edition: enterprise
flags:
  doraMetrics: true
segment_values_limit: 50
audit_enabled: false
cors_origins:
  - https://console.example.com
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "enterprise", cfg.Edition)
	assert.True(t, cfg.IsEnabled(FlagDoraMetrics))
	assert.Equal(t, 50, cfg.SegmentValuesLimit)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "file", cfg.Source("audit_enabled"))
	assert.Equal(t, "default", cfg.Source("log_level"))
	assert.Equal(t, []string{"https://console.example.com"}, cfg.CORSOrigins)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	writeConfig(t, "segment_values_limit: 50\nflags:\n  doraMetrics: true\n")
	t.Setenv("FLAGKEEP_SEGMENT_VALUES_LIMIT", "10")
	t.Setenv("FLAGKEEP_FLAGS", "UNLEASH_CLOUD, doraMetrics=false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.SegmentValuesLimit)
	assert.Equal(t, "environment", cfg.Source("segment_values_limit"))
	assert.True(t, cfg.IsEnabled(FlagUnleashCloud))
	assert.False(t, cfg.IsEnabled(FlagDoraMetrics))
}

func TestLoadInvalidFile(t *testing.T) {
	writeConfig(t, "flags: [not, a, map")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *FlagkeepConfig)
		wantErr string
	}{
		{"bad edition", func(c *FlagkeepConfig) { c.Edition = "pro" }, "invalid edition"},
		{"zero ttl", func(c *FlagkeepConfig) { c.SessionTTL = 0 }, "session_ttl"},
		{"zero limit", func(c *FlagkeepConfig) { c.SegmentValuesLimit = 0 }, "segment_values_limit"},
		{"bad level", func(c *FlagkeepConfig) { c.LogLevel = "trace" }, "log_level"},
		{"bad format", func(c *FlagkeepConfig) { c.LogFormat = "xml" }, "log_format"},
		{"bad origin", func(c *FlagkeepConfig) { c.CORSOrigins = []string{"example.com"} }, "cors_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormatOutputs(t *testing.T) {
	cfg := Default()
	cfg.Flags = map[string]bool{"b": true, "a": false}

	text := cfg.FormatText()
	assert.Contains(t, text, "segment_values_limit")
	assert.Contains(t, text, "a=false,b=true")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"attributes"`)
}
