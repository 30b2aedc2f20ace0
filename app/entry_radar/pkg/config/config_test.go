package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvTemperature, "")

	cfg, err := LoadConfig(writeConfig(t, "llm:\n  api_key: file-key\n"))
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 120, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.Concurrency.Markets)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, "output", cfg.Report.OutputDir)
	assert.Nil(t, cfg.LLM.Temperature)
	assert.False(t, cfg.Report.FallbackBrief)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvModel, "gpt-4o-mini")
	t.Setenv(EnvBaseURL, "http://localhost:9999/v1")
	t.Setenv(EnvTemperature, "0.4")

	cfg, err := LoadConfig(writeConfig(t, `
llm:
  api_key: file-key
  model: file-model
concurrency:
  markets: 3
report:
  fallback_brief: true
`))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.4, *cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 3, cfg.Concurrency.Markets)
	assert.True(t, cfg.Report.FallbackBrief)
}

func TestLoadConfig_BadTemperature(t *testing.T) {
	t.Setenv(EnvTemperature, "warm")

	_, err := LoadConfig(writeConfig(t, "llm: {}\n"))
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLLMConfig_ModelConfig(t *testing.T) {
	temp := float32(0.4)
	c := LLMConfig{APIKey: "k", BaseURL: "http://x", Model: "gpt-4o", Temperature: &temp}

	mc := c.ModelConfig()
	assert.Equal(t, "k", mc.APIKey)
	assert.Equal(t, "http://x", mc.BaseURL)
	assert.Equal(t, "gpt-4o", mc.Model)
	require.NotNil(t, mc.Temperature)

	*mc.Temperature = 1
	assert.Equal(t, float32(0.4), *c.Temperature)
}
