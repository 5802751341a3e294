package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/store"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "gemini", cfg.Embeddings.Provider)
	assert.Equal(t, "gemini-embedding-001", cfg.Embeddings.Model)
	assert.Equal(t, 768, cfg.Embeddings.Dimensions)
	assert.InDelta(t, 0.7, cfg.Search.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Search.KeywordWeight, 1e-9)
	assert.Equal(t, 100, cfg.Search.CandidatePool)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, store.FieldFASArguments, cfg.Rerank.PrimaryField)
	assert.InDelta(t, 1.0, cfg.Rerank.Fields[store.FieldFASArguments], 1e-9)

	require.NoError(t, cfg.Validate())
}

func TestLoadMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	// Point the user config somewhere empty so only the project file applies.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	yaml := `
server:
  port: 9000
search:
  semantic_weight: 0.6
  keyword_weight: 0.4
  candidate_pool: 50
embeddings:
  provider: static
  dimensions: 256
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fascase.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.InDelta(t, 0.6, cfg.Search.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.Search.KeywordWeight, 1e-9)
	assert.Equal(t, 50, cfg.Search.CandidatePool)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 256, cfg.Embeddings.Dimensions)

	// Untouched fields keep defaults.
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, "gemini-embedding-001", cfg.Embeddings.Model)
}

func TestLoadNoFilesUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Search, cfg.Search)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("FASCASE_PORT", "8123")
	t.Setenv("FASCASE_DATA_DIR", "/srv/fascase/data")
	t.Setenv("FASCASE_EMBEDDINGS_PROVIDER", "none")
	t.Setenv("FASCASE_SEMANTIC_WEIGHT", "0.8")
	t.Setenv("FASCASE_DEFAULT_TOP_K", "10")
	t.Setenv("FASCASE_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "/srv/fascase/data", cfg.Data.Dir)
	assert.Equal(t, "none", cfg.Embeddings.Provider)
	assert.InDelta(t, 0.8, cfg.Search.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.2, cfg.Search.KeywordWeight, 1e-9)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weights sum", func(c *Config) { c.Search.SemanticWeight = 0.9; c.Search.KeywordWeight = 0.3 }},
		{"negative weight", func(c *Config) { c.Search.SemanticWeight = -0.1 }},
		{"bad provider", func(c *Config) { c.Embeddings.Provider = "openai" }},
		{"bad transport", func(c *Config) { c.Server.Transport = "grpc" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero dimensions", func(c *Config) { c.Embeddings.Dimensions = 0 }},
		{"batch over API limit", func(c *Config) { c.Embeddings.BatchSize = 500 }},
		{"default over max", func(c *Config) { c.Search.DefaultLimit = 70 }},
		{"zero pool", func(c *Config) { c.Search.CandidatePool = 0 }},
		{"no rerank fields", func(c *Config) { c.Rerank.Fields = nil }},
		{"primary not configured", func(c *Config) { c.Rerank.PrimaryField = "unknown_field" }},
		{"negative rerank weight", func(c *Config) { c.Rerank.Fields[store.FieldFASArguments] = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMergeWeightsAsPair(t *testing.T) {
	base := NewConfig()
	other := &Config{}
	other.Search.SemanticWeight = 0.5
	other.Search.KeywordWeight = 0.5
	base.mergeWith(other)

	assert.InDelta(t, 0.5, base.Search.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.5, base.Search.KeywordWeight, 1e-9)
	require.NoError(t, base.Validate())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg := NewConfig()
	cfg.Server.Port = 8765
	cfg.Data.Dir = "corpus"

	path := filepath.Join(dir, "fascase.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8765, loaded.Server.Port)
	assert.Equal(t, "corpus", loaded.Data.Dir)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	env := "FASCASE_PORT=9321\nGEMINI_API_KEY=test-key-123\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("FASCASE_PORT")
		_ = os.Unsetenv("GEMINI_API_KEY")
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9321, cfg.Server.Port)
	assert.Equal(t, "test-key-123", APIKey())
}
