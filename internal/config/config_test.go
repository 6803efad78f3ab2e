package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
poll_interval: 2s
package: customsyncd
extra_ignore:
  - "*.tmp"
use_accelerator: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "customsyncd", cfg.Package)
	assert.Equal(t, []string{"*.tmp"}, cfg.ExtraIgnore)
	assert.True(t, cfg.UseAccelerator)
}

func TestValidate_FillsZeroValueDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "syncd", cfg.Package)
}
