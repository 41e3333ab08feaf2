package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

// JSONBackend keeps all vacancies as one JSON array, rewritten on every change.
type JSONBackend struct {
	path   string
	logger *zap.Logger
}

// NewJSONBackend creates a JSON backend. The file itself is created on first write.
func NewJSONBackend(opts Options) (*JSONBackend, error) {
	if err := requirePath(opts.Path, FormatJSON); err != nil {
		return nil, err
	}
	if err := ensureParentDir(opts.Path, opts.CreateDirs); err != nil {
		return nil, err
	}
	return &JSONBackend{path: opts.Path, logger: logger.OrNop(opts.Logger)}, nil
}

func (b *JSONBackend) Add(v models.Vacancy) error {
	vacancies := b.load()
	vacancies = append(vacancies, v)
	return b.save(vacancies)
}

func (b *JSONBackend) Query(c Criteria) ([]models.Vacancy, error) {
	return filter(b.load(), c), nil
}

func (b *JSONBackend) Delete(c Criteria) error {
	return b.save(reject(b.load(), c))
}

// load reads the stored array. An unreadable, corrupt or non-array file counts as
// empty; elements with an invalid salary are skipped.
func (b *JSONBackend) load() []models.Vacancy {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("failed to read vacancies file, treating as empty",
				zap.String("path", b.path), zap.Error(err))
		}
		return []models.Vacancy{}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		b.logger.Warn("vacancies file is not a JSON array, treating as empty",
			zap.String("path", b.path), zap.Error(err))
		return []models.Vacancy{}
	}

	vacancies := make([]models.Vacancy, 0, len(elements))
	for i, el := range elements {
		v, err := models.FromStored(el)
		if err != nil {
			b.logger.Warn("skipping invalid stored vacancy",
				zap.String("path", b.path), zap.Int("index", i), zap.Error(err))
			continue
		}
		vacancies = append(vacancies, v)
	}
	return vacancies
}

func (b *JSONBackend) save(vacancies []models.Vacancy) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(vacancies); err != nil {
		return apperrors.StorageWrite("failed to encode vacancies", err)
	}

	if err := os.WriteFile(b.path, buf.Bytes(), 0o644); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to write %s", b.path), err)
	}
	return nil
}
