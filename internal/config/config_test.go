package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "localhost:1337", cfg.Server.Address)
	assert.Equal(t, 1, cfg.Instances.PollInterval)
	assert.Equal(t, 300, cfg.Instances.CacheInvalidate)
	assert.Equal(t, "java", cfg.Runner.Java)
	assert.Equal(t, 1000, cfg.Runner.LogLimit)
	assert.Equal(t, DefaultManifestURL, cfg.Versions.ManifestURL)
	assert.Same(t, cfg, Get())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  address: 0.0.0.0:8080\ninstances:\n  path: " + dir + "\n  poll_interval: 0\nrunner:\n  max_memory: 4G\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MCSMP_RUNNER_JAVA=/opt/java/bin/java\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("MCSMP_RUNNER_JAVA") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	assert.Equal(t, dir, cfg.Instances.Path)
	assert.Equal(t, 1, cfg.Instances.PollInterval, "non-positive poll interval falls back to 1s")
	assert.Equal(t, "4G", cfg.Runner.MaxMemory)
	assert.Equal(t, "/opt/java/bin/java", cfg.Runner.Java)
}

func TestLoadConfigBadYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
