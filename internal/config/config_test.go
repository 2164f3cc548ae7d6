package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.API.ChunkDays)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, "COMMSIFT_COOKIE", cfg.API.CookieEnv)
	assert.Equal(t, "postman.com", cfg.Filter.InternalDomain)
	assert.Equal(t, 0.85, cfg.Filter.SimilarityThreshold)
	assert.Equal(t, 0.95, cfg.Filter.DedupThreshold)
	assert.Equal(t, 24, cfg.Filter.BlastWindowHours)
	assert.Equal(t, 5, cfg.Filter.HighVolumeMinMessages)
	assert.Equal(t, 0.7, cfg.Filter.HighVolumeTemplateRate)
	assert.Equal(t, 20, cfg.Output.EmailsPerBatch)
	assert.Equal(t, "commsift.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefaultMarkersArePopulated(t *testing.T) {
	markers := DefaultTemplateMarkers()
	assert.Greater(t, len(markers), 40)

	// Spot-check the categories
	assert.Contains(t, markers, "following up")
	assert.Contains(t, markers, "circling back")
	assert.Contains(t, markers, "quick chat")
	assert.Contains(t, markers, "per my last email")
	assert.Contains(t, markers, "out of office")

	assert.Contains(t, DefaultSenderDenylist(), "sales@postman.com")
	assert.Contains(t, DefaultAutomatedSenderMarkers(), "noreply@")
	assert.Contains(t, DefaultAutoReplyMarkers(), "automatic reply:")
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
api:
  base_url: "https://us-12345.app.example.com"
  chunk_days: 14
filter:
  internal_domain: "acme.io"
  similarity_threshold: 0.9
output:
  emails_per_batch: 10
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "https://us-12345.app.example.com", cfg.API.BaseURL)
	assert.Equal(t, 14, cfg.API.ChunkDays)
	assert.Equal(t, "acme.io", cfg.Filter.InternalDomain)
	assert.Equal(t, 0.9, cfg.Filter.SimilarityThreshold)
	assert.Equal(t, 10, cfg.Output.EmailsPerBatch)

	// Untouched values keep defaults
	assert.Equal(t, 0.95, cfg.Filter.DedupThreshold)
	assert.NotEmpty(t, cfg.Filter.TemplateMarkers)
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(cfgPath, []byte("api: [not: valid"), 0644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateAtWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.API.ChunkDays)

	// File was created; loading it again round-trips.
	_, err = os.Stat(cfgPath)
	require.NoError(t, err)

	again, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Filter.SimilarityThreshold, again.Filter.SimilarityThreshold)
}
