package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	config, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  path: vitals.csv
artifacts:
  dir: out
training:
  num_trees: 30
  seed: 7
log:
  level: debug
`), 0o600))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vitals.csv", config.Data.Path)
	assert.Equal(t, "out", config.Artifacts.Dir)
	assert.Equal(t, "label_encoder.gob", config.Artifacts.EncoderFile)
	assert.Equal(t, 30, config.Training.NumTrees)
	assert.Equal(t, int64(7), config.Training.Seed)
	assert.Equal(t, 0.2, config.Training.TestRatio)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VITALSFIRST_MODEL_DIR=from-dotenv\n"), 0o600))
	t.Setenv("VITALSFIRST_NUM_TREES", "12")
	t.Setenv("VITALSFIRST_DB_PATH", "")
	t.Cleanup(func() { os.Unsetenv("VITALSFIRST_MODEL_DIR") })

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, config.Training.NumTrees)
	assert.Equal(t, "from-dotenv", config.Artifacts.Dir)
	assert.Empty(t, config.Database.Path)
}

func TestLoadInvalidEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("VITALSFIRST_SEED", "forty-two")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"zero trees":     func(c *Config) { c.Training.NumTrees = 0 },
		"ratio too high": func(c *Config) { c.Training.TestRatio = 1 },
		"ratio zero":     func(c *Config) { c.Training.TestRatio = 0 },
		"negative depth": func(c *Config) { c.Training.MaxDepth = -1 },
		"no model dir":   func(c *Config) { c.Artifacts.Dir = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			config := Default()
			mutate(config)
			assert.Error(t, config.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

// chdir is a stand-in for testing.T.Chdir (Go 1.24+): it changes the working
// directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
