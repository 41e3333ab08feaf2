package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.hh.ru/vacancies", cfg.Source.BaseURL)
	assert.Equal(t, 113, cfg.Source.Area)
	assert.Equal(t, 100, cfg.Source.PerPage)
	assert.Equal(t, "json", cfg.Storage.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Source, cfg.Source)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	t.Setenv("VACANCIES_DATA_DIR", "/tmp/vacancies")

	yamlContent := `
source:
  area: 1
  request_timeout: 5s
storage:
  format: csv
  data_dir: ${VACANCIES_DATA_DIR}
  files:
    csv: jobs.csv
scraper:
  stop_on_error: true
logging:
  env: ${LOG_ENV:-prod}
`
	path := filepath.Join(t.TempDir(), "local.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Source.Area)
	assert.Equal(t, 5*time.Second, cfg.Source.RequestTimeout)
	assert.Equal(t, 100, cfg.Source.PerPage, "untouched keys keep their defaults")
	assert.Equal(t, "csv", cfg.Storage.Format)
	assert.Equal(t, "/tmp/vacancies/jobs.csv", cfg.Storage.FilePath("csv"))
	assert.True(t, cfg.Scraper.StopOnError)
	assert.Equal(t, "prod", cfg.Logging.Env)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  area: \"not a number\"\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Storage.Format = "txt"

	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "txt", loaded.Storage.Format)
	assert.Equal(t, cfg.Source.RequestTimeout, loaded.Source.RequestTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty base url", func(c *Config) { c.Source.BaseURL = "" }, true},
		{"per page too large", func(c *Config) { c.Source.PerPage = 101 }, true},
		{"negative timeout", func(c *Config) { c.Source.RequestTimeout = -time.Second }, true},
		{"unknown format", func(c *Config) { c.Storage.Format = "parquet" }, true},
		{"missing file name", func(c *Config) { c.Storage.Files.XLSX = ""; c.Storage.Format = "xlsx" }, true},
		{"supabase without key", func(c *Config) {
			c.Storage.Format = "supabase"
			c.Storage.Supabase = SupabaseConfig{URL: "https://x.supabase.co"}
		}, true},
		{"supabase complete", func(c *Config) {
			c.Storage.Format = "supabase"
			c.Storage.Supabase = SupabaseConfig{URL: "https://x.supabase.co", Key: "k", Table: "vacancies"}
		}, false},
		{"unknown log env", func(c *Config) { c.Logging.Env = "staging" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilePath(t *testing.T) {
	s := StorageConfig{DataDir: "data", Files: FilesConfig{JSON: "v.json", TXT: "/abs/v.txt"}}

	assert.Equal(t, filepath.Join("data", "v.json"), s.FilePath("json"))
	assert.Equal(t, "/abs/v.txt", s.FilePath("txt"))
	assert.Equal(t, "", s.FilePath("csv"))
	assert.Equal(t, "", s.FilePath("supabase"))
}
