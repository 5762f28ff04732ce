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

	path := filepath.Join(t.TempDir(), "transformer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  development: true
rules: [a.txt, b.txt.gz]
schema: overrides.yaml
input: in
output: out
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, []string{"a.txt", "b.txt.gz"}, cfg.Rules)
	assert.Equal(t, "overrides.yaml", cfg.Schema)
	assert.Equal(t, "in", cfg.Input)
	assert.Equal(t, "out", cfg.Output)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, path, cfg.File)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "input: from-file\noutput: from-file\n")

	t.Setenv("TRANSFORMER_INPUT", "from-env")
	t.Setenv("TRANSFORMER_LOG_LEVEL", "warn")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--input", "from-flag", "--dry-run"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Input)
	assert.Equal(t, "from-file", cfg.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.DryRun)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", Flags())
	require.NoError(t, err)

	assert.Equal(t, Default().Log, cfg.Log)
	assert.Empty(t, cfg.File)
	assert.Error(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err, "an explicit config file must exist")

	_, err = Load(writeConfig(t, "input: [unclosed\n"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Config{Input: "in", DryRun: true}.Validate())
	assert.ErrorContains(t, Config{Input: "in"}.Validate(), "output")
}
