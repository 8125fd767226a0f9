package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/docrag/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no API keys in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(OpenAIKeyVar, "")
	t.Setenv("DOCRAG_AI_API_KEY", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1000, cfg.Chunking.MaxSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 4, cfg.Retrieval.K)
	assert.Equal(t, "index_db", cfg.Index.Root)
	assert.False(t, cfg.Index.InMemory)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 0.4, cfg.Generation.AnswerTemperature)
	assert.Equal(t, 0.7, cfg.Generation.SummaryTemperature)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.GeneratorModel)
	assert.Equal(t, ai.OpenAIHost, cfg.AI.EmbeddingHost)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", `
ai:
  embedding_host: http://localhost:11434
  generator_host: http://localhost:11434
  embedding_model: embeddinggemma
  request_timeout: 5s
chunking:
  max_size: 500
  overlap: 50
retrieval:
  k: 6
sessions:
  ttl: 30m
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.AI.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.GeneratorModel, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 500, cfg.Chunking.MaxSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 6, cfg.Retrieval.K)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, DefaultFile, "retrieval:\n  k: 9\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Retrieval.K)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "bad.yaml", "chunking: [unclosed"))
	assert.Error(t, err)

	_, err = Load("", filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", "chunking:\n  max_size: 500\nretrieval:\n  k: 6\n")
	t.Setenv("DOCRAG_CHUNKING_MAX_SIZE", "800")
	t.Setenv("DOCRAG_AI_GENERATOR_MODEL", "qwen2.5:3b")
	t.Setenv("DOCRAG_INDEX_IN_MEMORY", "true")
	t.Setenv("DOCRAG_SESSIONS_TTL", "10m")
	t.Setenv("DOCRAG_OFFICE_LICENSE_KEY", "office-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Chunking.MaxSize)
	assert.Equal(t, 6, cfg.Retrieval.K)
	assert.Equal(t, "qwen2.5:3b", cfg.AI.GeneratorModel)
	assert.True(t, cfg.Index.InMemory)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "office-key", cfg.Office.LicenseKey)
}

func TestLoad_APIKeySources(t *testing.T) {
	t.Run("OPENAI_API_KEY fallback", func(t *testing.T) {
		isolate(t)
		t.Setenv(OpenAIKeyVar, "sk-openai")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "sk-openai", cfg.AI.APIKey)
		require.NoError(t, cfg.Validate())
	})

	t.Run("prefixed key wins", func(t *testing.T) {
		isolate(t)
		t.Setenv(OpenAIKeyVar, "sk-openai")
		t.Setenv("DOCRAG_AI_API_KEY", "sk-docrag")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "sk-docrag", cfg.AI.APIKey)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := isolate(t)
		os.Unsetenv(OpenAIKeyVar)
		envFile := writeFile(t, dir, "test.env", "OPENAI_API_KEY=sk-from-file\n")

		cfg, err := Load("", envFile)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-file", cfg.AI.APIKey)
	})

	t.Run("api key is never read from yaml", func(t *testing.T) {
		dir := isolate(t)
		path := writeFile(t, dir, "custom.yaml", "ai:\n  api_key: sk-yaml\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, cfg.AI.APIKey)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.AI.APIKey = "sk-test"
		return cfg
	}
	require.NoError(t, valid().Validate())

	t.Run("missing credential fails fast", func(t *testing.T) {
		cfg := Default()
		assert.ErrorIs(t, cfg.Validate(), ai.ErrMissingCredential)
	})

	t.Run("local host needs no key", func(t *testing.T) {
		cfg := Default()
		cfg.AI.EmbeddingHost = "http://localhost:11434"
		cfg.AI.GeneratorHost = "http://localhost:11434"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("in-memory index needs no root", func(t *testing.T) {
		cfg := valid()
		cfg.Index.Root = ""
		cfg.Index.InMemory = true
		assert.NoError(t, cfg.Validate())
	})

	invalid := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max size", func(c *Config) { c.Chunking.MaxSize = 0 }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"overlap not smaller than max", func(c *Config) { c.Chunking.Overlap = c.Chunking.MaxSize }},
		{"zero k", func(c *Config) { c.Retrieval.K = 0 }},
		{"empty index root", func(c *Config) { c.Index.Root = " " }},
		{"negative workers", func(c *Config) { c.Index.Workers = -2 }},
		{"zero ttl", func(c *Config) { c.Sessions.TTL = 0 }},
		{"answer temperature too high", func(c *Config) { c.Generation.AnswerTemperature = 2.5 }},
		{"negative summary temperature", func(c *Config) { c.Generation.SummaryTemperature = -0.1 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, level)
	}
}
