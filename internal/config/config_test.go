package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Catalog.HTTPTimeout)
	assert.Equal(t, time.Second, cfg.Catalog.PageDelay)
	assert.NotEmpty(t, cfg.Catalog.BaseURL)
	assert.Equal(t, "stream:pricing_history", cfg.Redis.Stream)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "https://example.test")
	t.Setenv("CATALOG_PAGE_DELAY", "250ms")
	t.Setenv("BATCH_SIZE", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.Catalog.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.PageDelay)
	assert.Equal(t, 7, cfg.Batch.BatchSize)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Batch.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg.Batch.BatchSize = 10
	cfg.Catalog.BaseURL = ""
	assert.Error(t, cfg.Validate())
}
