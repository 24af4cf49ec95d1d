package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().DataDir, cfg.DataDir)
	assert.True(t, cfg.Sync)
}

func TestLoadReadsFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lattice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /tmp/mydata\nsync: false\nmax_varchar: 100\nlog_level: debug\nlog_format: json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mydata", cfg.DataDir)
	assert.False(t, cfg.Sync)
	assert.Equal(t, 100, cfg.MaxVarchar)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestEnsureDataDirCreatesDirectory(t *testing.T) {
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "data")
	require.NoError(t, cfg.EnsureDataDir())
	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
