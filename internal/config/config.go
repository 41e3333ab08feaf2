package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Storage    StorageConfig    `yaml:"storage"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SourceConfig holds the listing API settings
type SourceConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Area           int           `yaml:"area"`
	PerPage        int           `yaml:"per_page"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
}

// StorageConfig holds backend selection and file locations
type StorageConfig struct {
	Format     string         `yaml:"format"` // json, csv, xlsx, txt, supabase
	DataDir    string         `yaml:"data_dir"`
	CreateDirs bool           `yaml:"create_dirs"`
	Files      FilesConfig    `yaml:"files"`
	Supabase   SupabaseConfig `yaml:"supabase"`
}

// FilesConfig holds the file name used by each file backend, relative to DataDir
type FilesConfig struct {
	JSON string `yaml:"json"`
	CSV  string `yaml:"csv"`
	XLSX string `yaml:"xlsx"`
	TXT  string `yaml:"txt"`
}

// SupabaseConfig holds the remote table backend settings
type SupabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Table string `yaml:"table"`
}

// ScraperConfig holds fetch-and-store policy
type ScraperConfig struct {
	StopOnError bool `yaml:"stop_on_error"`
	EnableDedup bool `yaml:"enable_dedup"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MonitoringConfig holds metrics export settings
type MonitoringConfig struct {
	MetricsFile string `yaml:"metrics_file"` // empty disables the textfile export
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:        "https://api.hh.ru/vacancies",
			Area:           113,
			PerPage:        100,
			RequestTimeout: 30 * time.Second,
			UserAgent:      "hh-vacancies-go/1.0",
		},
		Storage: StorageConfig{
			Format:     "json",
			DataDir:    "data",
			CreateDirs: true,
			Files: FilesConfig{
				JSON: "vacancies.json",
				CSV:  "vacancies.csv",
				XLSX: "vacancies.xlsx",
				TXT:  "vacancies.txt",
			},
			Supabase: SupabaseConfig{
				URL:   os.Getenv("SUPABASE_URL"),
				Key:   os.Getenv("SUPABASE_KEY"),
				Table: "vacancies",
			},
		},
		Logging: LoggingConfig{
			Env:   "local",
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file yields the default configuration.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(filename))
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data = expandEnvVars(data)

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func (c *Config) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}

	if c.Source.PerPage <= 0 || c.Source.PerPage > 100 {
		return fmt.Errorf("source.per_page must be between 1 and 100, got %d", c.Source.PerPage)
	}

	if c.Source.RequestTimeout < 0 {
		return fmt.Errorf("source.request_timeout cannot be negative")
	}

	switch c.Storage.Format {
	case "json", "csv", "xlsx", "txt":
		if c.Storage.FilePath(c.Storage.Format) == "" {
			return fmt.Errorf("storage.files.%s is required", c.Storage.Format)
		}
	case "supabase":
		if c.Storage.Supabase.URL == "" || c.Storage.Supabase.Key == "" {
			return fmt.Errorf("storage.supabase.url and storage.supabase.key are required")
		}
	default:
		return fmt.Errorf("storage.format must be one of json, csv, xlsx, txt, supabase, got %q", c.Storage.Format)
	}

	switch c.Logging.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("logging.env must be local, dev or prod, got %q", c.Logging.Env)
	}

	return nil
}

// FilePath returns the backing file for a file format, joined with DataDir.
// It returns "" for formats without a file.
func (s StorageConfig) FilePath(format string) string {
	var name string
	switch format {
	case "json":
		name = s.Files.JSON
	case "csv":
		name = s.Files.CSV
	case "xlsx":
		name = s.Files.XLSX
	case "txt":
		name = s.Files.TXT
	}
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) || s.DataDir == "" {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
