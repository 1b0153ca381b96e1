package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero layers", func(c *Config) { c.Technology.Layers = 0 }},
		{"zero die width", func(c *Config) { c.Technology.DieWidth = 0 }},
		{"negative die height", func(c *Config) { c.Technology.DieHeight = -1 }},
		{"zero loop limit", func(c *Config) { c.SA.LoopLimit = 0 }},
		{"zero cluster limit", func(c *Config) { c.Limits.TSVPerClusterLimit = 0 }},
		{"empty output dir", func(c *Config) { c.Reporting.OutputDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFallsBackToDefaultWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Technology.Layers = 3
	cfg.SA.LoopLimit = 5000
	cfg.Voltage.MergeModules = false

	path := filepath.Join(t.TempDir(), "floorplanner.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Technology.Layers)
	assert.Equal(t, 5000, loaded.SA.LoopLimit)
	assert.False(t, loaded.Voltage.MergeModules)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("technology: [this is not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
