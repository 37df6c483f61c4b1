package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://www.tunisport.es", cfg.Site.BaseURL)
	assert.Equal(t, "https://www.tunisport.es/catalog/chip-tuning", cfg.CatalogURL())
	assert.Equal(t, 5*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 3, cfg.Fetcher.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Fetcher.RequestDelay)
	assert.Equal(t, filepath.Join("output", "output.xlsx"), cfg.WorkbookPath())
	assert.Equal(t, 2, cfg.Logging.MaxSize)
	assert.Equal(t, 2, cfg.Logging.MaxBackups)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TUNISCRAPER_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("TUNISCRAPER_OUTPUT_DIR", "/tmp/scrape-out")
	t.Setenv("TUNISCRAPER_REQUEST_DELAY", "250ms")
	t.Setenv("TUNISCRAPER_MAX_CATEGORIES", "4")
	t.Setenv("TUNISCRAPER_LOG_LEVEL", "debug")
	t.Setenv("TUNISCRAPER_RESPECT_ROBOTS", "false")
	t.Setenv("TUNISCRAPER_LOG_FILE", "")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://127.0.0.1:9999", cfg.Site.BaseURL)
	assert.Equal(t, "/tmp/scrape-out", cfg.Output.BaseDirectory)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetcher.RequestDelay)
	assert.Equal(t, 4, cfg.Scrape.MaxCategories)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Fetcher.RespectRobots)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TUNISCRAPER_MAX_CATEGORIES", "many")
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
site:
  base_url: http://localhost:8080
  selectors:
    grid: ul.items a
fetcher:
  timeout: 10s
  request_delay: 0s
output:
  base_directory: ./out
  workbook_name: cars.xlsx
scrape:
  max_categories: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://localhost:8080", cfg.Site.BaseURL)
	assert.Equal(t, "ul.items a", cfg.Site.Selectors.Grid)
	// untouched selectors keep their defaults
	assert.Equal(t, "span.breadcrump__active", cfg.Site.Selectors.ActiveCrumb)
	assert.Equal(t, 10*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Fetcher.RequestDelay)
	assert.Equal(t, filepath.Join("out", "cars.xlsx"), cfg.WorkbookPath())
	assert.Equal(t, 2, cfg.Scrape.MaxCategories)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("site: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.Site.BaseURL = "tunisport.es" }},
		{"catalog path without slash", func(c *Config) { c.Site.CatalogPath = "catalog" }},
		{"empty grid selector", func(c *Config) { c.Site.Selectors.Grid = "" }},
		{"zero timeout", func(c *Config) { c.Fetcher.Timeout = 0 }},
		{"zero attempts", func(c *Config) { c.Fetcher.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.Fetcher.RequestDelay = -time.Second }},
		{"empty output", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"csv workbook", func(c *Config) { c.Output.WorkbookName = "out.csv" }},
		{"negative max categories", func(c *Config) { c.Scrape.MaxCategories = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Output.BaseDirectory = "/data/scrape"
	cfg.Scrape.MaxCategories = 7
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "/data/scrape", loaded.Output.BaseDirectory)
	assert.Equal(t, 7, loaded.Scrape.MaxCategories)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  base_directory: ./from-file\nlogging:\n  level: warn\n"), 0644))
	t.Setenv("TUNISCRAPER_LOG_LEVEL", "error")

	cfg, err := Load(path, map[string]interface{}{"output": "./from-flag"})
	require.NoError(t, err)

	assert.Equal(t, "./from-flag", cfg.Output.BaseDirectory)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestFlagLiftsMaxCategoriesCap(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrape:\n  max_categories: 3\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scrape.MaxCategories)

	cfg, err = Load(path, map[string]interface{}{"max-categories": 0})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Scrape.MaxCategories)

	cfg, err = Load(path, map[string]interface{}{"max-categories": -2})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scrape.MaxCategories)
}

func TestLoadFailsValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TUNISCRAPER_LOG_LEVEL", "chatty")

	_, err := Load("", nil)
	assert.Error(t, err)
}
