package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/models"
)

// Backend persists vacancies and answers filtered queries.
// Every implementation shares the same Criteria semantics.
type Backend interface {
	Add(v models.Vacancy) error
	Query(c Criteria) ([]models.Vacancy, error)
	Delete(c Criteria) error
}

// Format selects a storage backend.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatTXT      Format = "txt"
	FormatSupabase Format = "supabase"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatXLSX, FormatTXT, FormatSupabase}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown storage format %q", name), nil)
}

// Options configures a backend. Path is the backing file for the file formats.
type Options struct {
	Path       string
	CreateDirs bool
	Logger     *zap.Logger
	Supabase   SupabaseOptions
}

// SupabaseOptions holds the remote table settings for FormatSupabase.
type SupabaseOptions struct {
	URL   string
	Key   string
	Table string
}

// New creates the backend for format.
func New(format Format, opts Options) (Backend, error) {
	switch format {
	case FormatJSON:
		return NewJSONBackend(opts)
	case FormatCSV:
		return NewCSVBackend(opts)
	case FormatXLSX:
		return NewXLSXBackend(opts)
	case FormatTXT:
		return NewTXTBackend(opts)
	case FormatSupabase:
		return NewSupabaseBackend(opts)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown storage format %q", format), nil)
	}
}

func ensureParentDir(path string, create bool) error {
	if !create {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to create directory %s", dir), err)
	}
	return nil
}

func requirePath(path string, format Format) error {
	if path == "" {
		return apperrors.InvalidInput(fmt.Sprintf("%s backend requires a file path", format), nil)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
