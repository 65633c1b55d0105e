package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.7, cfg.Retrieval.EmbeddingWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Retrieval.KeywordWeight, 1e-9)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Generation.Model)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, filepath.Join("data", "funds_data.json"), cfg.Catalog.Path())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/var/lib/fundfaq")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Generation.APIKey)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/var/lib/fundfaq/funds_data.json", cfg.Catalog.Path())
}

func TestCatalogPathAbsoluteFile(t *testing.T) {
	c := CatalogConfig{DataDir: "data", File: "/etc/fundfaq/funds_data.json"}
	assert.Equal(t, "/etc/fundfaq/funds_data.json", c.Path())
}
