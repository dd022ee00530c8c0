package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffscope/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", cfg.Provider.Model)
	assert.Equal(t, "claude-haiku-4-5", cfg.Provider.ReformatModel)
	assert.Equal(t, "120s", cfg.HTTP.Timeout)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 5, cfg.Runner.FileConcurrency)
	assert.Equal(t, 10, cfg.Runner.MaxTurns)
	assert.Equal(t, 10, cfg.Runner.ContextLines)
	assert.True(t, cfg.Reconcile.Enabled)
	assert.Equal(t, 5, cfg.Reconcile.LineTolerance)
	assert.True(t, cfg.Store.Enabled)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.True(t, cfg.Observability.Logging.RedactAPIKeys)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
provider:
  model: claude-opus-4-5
runner:
  fileConcurrency: 2
  tokenBudget: 4000
failOn: medium
store:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ds.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-5", cfg.Provider.Model)
	assert.Equal(t, 2, cfg.Runner.FileConcurrency)
	assert.Equal(t, 4000, cfg.Runner.TokenBudget)
	assert.Equal(t, "medium", cfg.FailOn)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, 10, cfg.Runner.MaxTurns, "unset keys keep defaults")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ds.yaml"), []byte("provider: [oops"), 0o644))

	_, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	assert.Error(t, err)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("DS_TEST_API_KEY", "sk-test-1234")

	dir := t.TempDir()
	content := `
provider:
  apiKey: ${DS_TEST_API_KEY}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ds.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "sk-test-1234", cfg.Provider.APIKey)
}

func TestLoadKeepsUnsetEnvVarLiteral(t *testing.T) {
	dir := t.TempDir()
	content := `
provider:
  apiKey: ${DS_DEFINITELY_UNSET_VAR}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ds.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "${DS_DEFINITELY_UNSET_VAR}", cfg.Provider.APIKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DS_RUNNER_MAXTURNS", "7")

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Runner.MaxTurns)
}
