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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 2<<20, cfg.Analysis.MaxInputBytes)
	assert.Equal(t, 5, cfg.Analysis.TopTags)
	assert.Equal(t, TaxonomySourcePostgres, cfg.Taxonomy.Source)
	assert.Equal(t, CategorizationKeyword, cfg.Categorization.Type)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  primary:
    dsn: postgres://localhost/inkwell
analysis:
  top_tags: 3
taxonomy:
  source: sqlite
  sqlite_path: /tmp/tax.db
`)
	t.Setenv("INKWELL_ANALYSIS_KEEP_STOPWORDS", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/inkwell", cfg.Database.Primary.DSN)
	assert.Equal(t, 3, cfg.Analysis.TopTags)
	assert.True(t, cfg.Analysis.KeepStopwords)
	assert.Equal(t, TaxonomySourceSQLite, cfg.Taxonomy.Source)
	assert.Equal(t, "sk-test", cfg.Categorization.OpenAIAPIKey)
	assert.NoError(t, cfg.RequirePrimaryDatabase())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"top tags too high", func(c *Config) { c.Analysis.TopTags = 6 }, "analysis.top_tags"},
		{"top tags zero", func(c *Config) { c.Analysis.TopTags = 0 }, "analysis.top_tags"},
		{"input limit", func(c *Config) { c.Analysis.MaxInputBytes = 0 }, "analysis.max_input_bytes"},
		{"unknown taxonomy source", func(c *Config) { c.Taxonomy.Source = "mongo" }, "taxonomy.source"},
		{"sqlite without path", func(c *Config) {
			c.Taxonomy.Source = TaxonomySourceSQLite
			c.Taxonomy.SQLitePath = ""
		}, "taxonomy.sqlite_path"},
		{"llm without model", func(c *Config) {
			c.Categorization.Type = CategorizationLLM
			c.Categorization.Provider = "openai"
		}, "categorization.model"},
		{"llm openai without key", func(c *Config) {
			c.Categorization.Type = CategorizationLLM
			c.Categorization.Provider = "openai"
			c.Categorization.Model = "gpt-4o-mini"
			c.Categorization.OpenAIAPIKey = ""
		}, "openai_api_key"},
		{"llm unknown provider", func(c *Config) {
			c.Categorization.Type = CategorizationLLM
			c.Categorization.Provider = "anthropic"
			c.Categorization.Model = "x"
		}, "categorization.provider"},
		{"bad categorization type", func(c *Config) { c.Categorization.Type = "magic" }, "categorization.type"},
		{"no queues", func(c *Config) { c.Worker.Queues = nil }, "worker.queues"},
		{"async queue not served", func(c *Config) {
			c.Analysis.ReanalyzeAsync = true
			c.Analysis.Queue = "elsewhere"
		}, "analysis.queue"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad server mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_LLMWithKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.Categorization.Type = CategorizationLLM
	cfg.Categorization.Provider = "gemini"
	cfg.Categorization.Model = "gemini-1.5-flash"
	cfg.Categorization.GeminiAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestRequirePrimaryDatabase(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.RequirePrimaryDatabase(), ErrMissingDatabase)
}

func TestLoadPromptContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Title: {{TITLE}}"), 0o600))

	content, err := LoadPromptContent(path, "unused.txt")
	require.NoError(t, err)
	assert.Equal(t, "Title: {{TITLE}}", content)

	_, err = LoadPromptContent(filepath.Join(dir, "missing.txt"), "unused.txt")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestResolvePromptPath_Relative(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path, err := ResolvePromptPath("", "categorize.txt")
	require.NoError(t, err)
	assert.Equal(t, "categorize.txt", filepath.Base(path))
	assert.Contains(t, path, filepath.Join(".config", "inkwell", "prompts"))
}
