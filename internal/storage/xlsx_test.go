package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hh-vacancies-go/internal/models"
)

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	return rows
}

func TestXLSXBackend_HeaderOnConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")
	_, err := NewXLSXBackend(Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, [][]string{models.Fields}, readSheet(t, path))
}

func TestXLSXBackend_RowsAppendedBelowHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")
	b, err := NewXLSXBackend(Options{Path: path})
	require.NoError(t, err)
	addAll(t, b, sampleVacancies()[:2])

	rows := readSheet(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Python Developer", rows[1][0])
	assert.Equal(t, `{"from":100000,"to":150000}`, rows[1][2])
	assert.Equal(t, "Go Developer", rows[2][0])
}

func TestXLSXBackend_MissingFileIsEmpty(t *testing.T) {
	b := &XLSXBackend{path: filepath.Join(t.TempDir(), "absent.xlsx")}

	got, err := b.Query(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestXLSXBackend_DeleteKeepsSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Vacancies"))
	require.NoError(t, writeRow(f, "Vacancies", 1, models.Fields))
	require.NoError(t, writeRow(f, "Vacancies", 2, toRecord(sampleVacancies()[2])))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	b, err := NewXLSXBackend(Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, b.Delete(nil))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Vacancies"}, wb.GetSheetList())

	rows, err := wb.GetRows("Vacancies")
	require.NoError(t, err)
	assert.Equal(t, [][]string{models.Fields}, rows)
}

func TestXLSXBackend_EmptyRecordsKeepTheirRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")
	b, err := NewXLSXBackend(Options{Path: path})
	require.NoError(t, err)

	filled := models.Vacancy{Title: "Real", Link: "l"}
	addAll(t, b, []models.Vacancy{{}, filled, {}})

	got, err := b.Query(nil)
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{{}, filled, {}}, got)

	require.NoError(t, b.Delete(Criteria{Field(models.FieldTitle, "Real")}))
	require.NoError(t, b.Add(filled))

	got, err = b.Query(nil)
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{{}, {}, filled}, got)
}

func TestXLSXBackend_WorkbookWithoutDataRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")

	f := excelize.NewFile()
	require.NoError(t, writeRow(f, defaultSheet, 1, models.Fields))
	require.NoError(t, writeRow(f, defaultSheet, 2, toRecord(sampleVacancies()[0])))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	b, err := NewXLSXBackend(Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, b.Add(sampleVacancies()[1]))

	got, err := b.Query(nil)
	require.NoError(t, err)
	assert.Equal(t, sampleVacancies()[:2], got)
}
