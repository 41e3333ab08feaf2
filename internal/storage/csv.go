package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

// CSVBackend stores one vacancy per row under a fixed header.
type CSVBackend struct {
	path   string
	logger *zap.Logger
}

// NewCSVBackend creates a CSV backend, writing the header when the file is missing.
func NewCSVBackend(opts Options) (*CSVBackend, error) {
	if err := requirePath(opts.Path, FormatCSV); err != nil {
		return nil, err
	}
	if err := ensureParentDir(opts.Path, opts.CreateDirs); err != nil {
		return nil, err
	}

	b := &CSVBackend{path: opts.Path, logger: logger.OrNop(opts.Logger)}

	exists, err := fileExists(opts.Path)
	if err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to stat %s", opts.Path), err)
	}
	if !exists {
		if err := b.rewrite(nil); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *CSVBackend) Add(v models.Vacancy) error {
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to stat %s", b.path), err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(models.Fields); err != nil {
			return apperrors.StorageWrite("failed to write csv header", err)
		}
	}
	if err := w.Write(toRecord(v)); err != nil {
		return apperrors.StorageWrite("failed to write csv row", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.StorageWrite("failed to flush csv row", err)
	}
	return nil
}

func (b *CSVBackend) Query(c Criteria) ([]models.Vacancy, error) {
	vacancies, err := b.load()
	if err != nil {
		return nil, err
	}
	return filter(vacancies, c), nil
}

func (b *CSVBackend) Delete(c Criteria) error {
	vacancies, err := b.load()
	if err != nil {
		return err
	}
	return b.rewrite(reject(vacancies, c))
}

// load reads every row, mapping columns by header name.
func (b *CSVBackend) load() ([]models.Vacancy, error) {
	f, err := os.Open(b.path)
	if err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []models.Vacancy{}, nil
	}
	if err != nil {
		return nil, apperrors.StorageRead("failed to read csv header", err)
	}
	columns := indexColumns(header)

	var vacancies []models.Vacancy
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.StorageRead(fmt.Sprintf("failed to read csv row %d", line), err)
		}

		v, err := fromRecord(columnGetter(columns, record))
		if err != nil {
			b.logger.Warn("skipping invalid csv row", zap.String("path", b.path), zap.Int("line", line), zap.Error(err))
			continue
		}
		vacancies = append(vacancies, v)
	}
	if vacancies == nil {
		vacancies = []models.Vacancy{}
	}
	return vacancies, nil
}

func (b *CSVBackend) rewrite(vacancies []models.Vacancy) error {
	f, err := os.Create(b.path)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to create %s", b.path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.Fields); err != nil {
		return apperrors.StorageWrite("failed to write csv header", err)
	}
	for _, v := range vacancies {
		if err := w.Write(toRecord(v)); err != nil {
			return apperrors.StorageWrite("failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.StorageWrite("failed to flush csv file", err)
	}
	return nil
}

// toRecord renders v in models.Fields column order with the salary as its token.
func toRecord(v models.Vacancy) []string {
	record := make([]string, len(models.Fields))
	for i, name := range models.Fields {
		record[i], _ = v.Field(name)
	}
	return record
}

// fromRecord rebuilds a vacancy from named column values.
func fromRecord(get func(name string) string) (models.Vacancy, error) {
	salary, err := models.DecodeSalary(get(models.FieldSalary))
	if err != nil {
		return models.Vacancy{}, err
	}
	return models.Vacancy{
		Title:        get(models.FieldTitle),
		Link:         get(models.FieldLink),
		Salary:       salary,
		Description:  get(models.FieldDescription),
		Requirements: get(models.FieldRequirements),
	}, nil
}

// fieldColumns maps each field to its position in models.Fields.
var fieldColumns = indexColumns(models.Fields)

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

// columnGetter looks fields up by column; short records yield "" for missing cells.
func columnGetter(columns map[string]int, record []string) func(name string) string {
	return func(name string) string {
		if i, ok := columns[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}
}
