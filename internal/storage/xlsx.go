package storage

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

const (
	defaultSheet = "Sheet1"
	// dataRangeName is a workbook-scoped name covering the header and every data row.
	dataRangeName = "vacancy_data"
)

// XLSXBackend stores vacancies in the first sheet of a workbook, header in row 1.
type XLSXBackend struct {
	path   string
	logger *zap.Logger
}

// NewXLSXBackend creates an XLSX backend, creating the workbook when it is missing.
func NewXLSXBackend(opts Options) (*XLSXBackend, error) {
	if err := requirePath(opts.Path, FormatXLSX); err != nil {
		return nil, err
	}
	if err := ensureParentDir(opts.Path, opts.CreateDirs); err != nil {
		return nil, err
	}

	b := &XLSXBackend{path: opts.Path, logger: logger.OrNop(opts.Logger)}

	exists, err := fileExists(opts.Path)
	if err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to stat %s", opts.Path), err)
	}
	if !exists {
		if err := b.rewrite(defaultSheet, nil); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *XLSXBackend) Add(v models.Vacancy) error {
	exists, err := fileExists(b.path)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to stat %s", b.path), err)
	}
	if !exists {
		return b.rewrite(defaultSheet, []models.Vacancy{v})
	}

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}

	next := lastRow(f, rows) + 1
	if next == 1 {
		if err := writeRow(f, sheet, 1, models.Fields); err != nil {
			return err
		}
		next = 2
	}
	if err := writeRow(f, sheet, next, toRecord(v)); err != nil {
		return err
	}
	if err := setDataRange(f, sheet, next); err != nil {
		return err
	}

	if err := f.Save(); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to save %s", b.path), err)
	}
	return nil
}

func (b *XLSXBackend) Query(c Criteria) ([]models.Vacancy, error) {
	_, vacancies, err := b.load()
	if err != nil {
		return nil, err
	}
	return filter(vacancies, c), nil
}

func (b *XLSXBackend) Delete(c Criteria) error {
	sheet, vacancies, err := b.load()
	if err != nil {
		return err
	}
	return b.rewrite(sheet, reject(vacancies, c))
}

// load reads the first sheet from row 2 onwards. A missing workbook is empty.
func (b *XLSXBackend) load() (string, []models.Vacancy, error) {
	exists, err := fileExists(b.path)
	if err != nil {
		return "", nil, apperrors.StorageRead(fmt.Sprintf("failed to stat %s", b.path), err)
	}
	if !exists {
		return defaultSheet, []models.Vacancy{}, nil
	}

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return "", nil, apperrors.StorageRead(fmt.Sprintf("failed to open %s", b.path), err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, apperrors.StorageRead(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}

	last := lastRow(f, rows)
	vacancies := make([]models.Vacancy, 0, last)
	for i := 1; i < last; i++ {
		// GetRows trims trailing empty cells and rows; a missing row is an all-empty record.
		var row []string
		if i < len(rows) {
			row = rows[i]
		}
		v, err := fromRecord(columnGetter(fieldColumns, row))
		if err != nil {
			b.logger.Warn("skipping invalid xlsx row", zap.String("path", b.path), zap.Int("row", i+1), zap.Error(err))
			continue
		}
		vacancies = append(vacancies, v)
	}
	return sheet, vacancies, nil
}

func (b *XLSXBackend) rewrite(sheet string, vacancies []models.Vacancy) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return apperrors.StorageWrite(fmt.Sprintf("failed to name sheet %s", sheet), err)
		}
	}

	if err := writeRow(f, sheet, 1, models.Fields); err != nil {
		return err
	}
	for i, v := range vacancies {
		if err := writeRow(f, sheet, i+2, toRecord(v)); err != nil {
			return err
		}
	}
	if err := setDataRange(f, sheet, len(vacancies)+1); err != nil {
		return err
	}

	if err := f.SaveAs(b.path); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to save %s", b.path), err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("invalid row %d", row), err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to write row %d", row), err)
	}
	return nil
}

// lastRow returns the last used row number. GetRows omits trailing rows whose cells
// are all empty, so the recorded data range wins when it reaches further.
func lastRow(f *excelize.File, rows [][]string) int {
	last := len(rows)
	for _, dn := range f.GetDefinedName() {
		if dn.Name != dataRangeName {
			continue
		}
		_, end, ok := strings.Cut(dn.RefersTo, ":")
		if !ok {
			continue
		}
		_, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(end, "$", ""))
		if err == nil && row > last {
			last = row
		}
	}
	return last
}

// setDataRange points the data range name at rows 1..last of sheet.
func setDataRange(f *excelize.File, sheet string, last int) error {
	end, err := excelize.CoordinatesToCellName(len(models.Fields), last, true)
	if err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("invalid row %d", last), err)
	}

	// Absent on the first write and on workbooks created elsewhere.
	_ = f.DeleteDefinedName(&excelize.DefinedName{Name: dataRangeName})

	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     dataRangeName,
		RefersTo: fmt.Sprintf("'%s'!$A$1:%s", sheet, end),
	}); err != nil {
		return apperrors.StorageWrite("failed to record data range", err)
	}
	return nil
}
