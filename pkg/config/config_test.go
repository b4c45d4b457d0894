package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bleve", cfg.Index.Backend)
	assert.Equal(t, 10, cfg.Search.SuggestionLimit)
	assert.Equal(t, 50, cfg.Search.ResultLimit)
	assert.Equal(t, 1, cfg.Search.FuzzyDistance)
	assert.True(t, cfg.Search.FuzzyTranspositions)
	assert.Equal(t, "or", cfg.Search.ParserConjunction)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 3600, cfg.CORS.MaxAge)
	assert.Equal(t, 2, cfg.Ingest.CSVNameColumn)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte(`
server:
  port: 9000
  readTimeout: 5s
index:
  backend: memory
search:
  parserConjunction: and
  resultLimit: 20
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("TS_SERVER_PORT", "9100")
	t.Setenv("TS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Index.Backend)
	assert.Equal(t, "and", cfg.Search.ParserConjunction)
	assert.Equal(t, 20, cfg.Search.ResultLimit)
	assert.Equal(t, 10, cfg.Search.SuggestionLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	data := []byte(`
[server]
port = 9200

[index]
backend = "memory"

[search]
resultLimit = 25
fuzzyTranspositions = false
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Index.Backend)
	assert.Equal(t, 25, cfg.Search.ResultLimit)
	assert.False(t, cfg.Search.FuzzyTranspositions)
	assert.Equal(t, "or", cfg.Search.ParserConjunction)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Index.Backend = "tantivy" }},
		{"unknown conjunction", func(c *Config) { c.Search.ParserConjunction = "xor" }},
		{"zero suggestion limit", func(c *Config) { c.Search.SuggestionLimit = 0 }},
		{"zero result limit", func(c *Config) { c.Search.ResultLimit = 0 }},
		{"negative fuzzy distance", func(c *Config) { c.Search.FuzzyDistance = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
