package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

const txtSeparator = "\t"

// Backslash, tab and line breaks inside values are written as escape sequences so a
// record always occupies exactly one line.
var (
	txtEscaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
	txtUnescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n", `\r`, "\r")
)

// TXTBackend stores one tab-separated vacancy per line.
type TXTBackend struct {
	path   string
	logger *zap.Logger
}

// NewTXTBackend creates a TXT backend. The file is created on first write.
func NewTXTBackend(opts Options) (*TXTBackend, error) {
	if err := requirePath(opts.Path, FormatTXT); err != nil {
		return nil, err
	}
	if err := ensureParentDir(opts.Path, opts.CreateDirs); err != nil {
		return nil, err
	}
	return &TXTBackend{path: opts.Path, logger: logger.OrNop(opts.Logger)}, nil
}

func (b *TXTBackend) Add(v models.Vacancy) error {
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	if _, err := f.WriteString(toLine(v)); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to append to %s", b.path), err)
	}
	return nil
}

func (b *TXTBackend) Query(c Criteria) ([]models.Vacancy, error) {
	vacancies, err := b.load()
	if err != nil {
		return nil, err
	}
	return filter(vacancies, c), nil
}

func (b *TXTBackend) Delete(c Criteria) error {
	vacancies, err := b.load()
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, v := range reject(vacancies, c) {
		sb.WriteString(toLine(v))
	}
	if err := os.WriteFile(b.path, []byte(sb.String()), 0o644); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to write %s", b.path), err)
	}
	return nil
}

// load parses every line. A missing file is empty; lines without exactly five
// fields are skipped.
func (b *TXTBackend) load() ([]models.Vacancy, error) {
	f, err := os.Open(b.path)
	if os.IsNotExist(err) {
		return []models.Vacancy{}, nil
	}
	if err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	vacancies := []models.Vacancy{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), txtSeparator)
		if len(fields) != len(models.Fields) {
			continue
		}

		for i := range fields {
			fields[i] = txtUnescaper.Replace(fields[i])
		}
		v, err := fromRecord(columnGetter(fieldColumns, fields))
		if err != nil {
			b.logger.Warn("skipping invalid txt line", zap.String("path", b.path), zap.Int("line", line), zap.Error(err))
			continue
		}
		vacancies = append(vacancies, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to read %s", b.path), err)
	}
	return vacancies, nil
}

func toLine(v models.Vacancy) string {
	record := toRecord(v)
	for i := range record {
		record[i] = txtEscaper.Replace(record[i])
	}
	return strings.Join(record, txtSeparator) + "\n"
}
