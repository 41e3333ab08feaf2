package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/internal/scraper"
)

func testConfig(t *testing.T, baseURL, format string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Source.BaseURL = baseURL
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Storage.Format = format
	return cfg
}

func TestNew_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Go", r.URL.Query().Get("text"))
		_, _ = w.Write([]byte(`{"items": [
			{"name": "Go Dev", "alternate_url": "https://hh.ru/vacancy/1", "salary": {"from": 200000}, "snippet": {"requirement": "<highlighttext>Go</highlighttext>"}},
			{"name": "Junior", "alternate_url": "https://hh.ru/vacancy/2", "salary": null}
		]}`))
	}))
	defer srv.Close()

	for _, format := range []string{"json", "csv", "xlsx", "txt"} {
		t.Run(format, func(t *testing.T) {
			a, err := New(testConfig(t, srv.URL, format), nil)
			require.NoError(t, err)

			report, err := a.Manager.FetchAndStore(context.Background(), "Go")
			require.NoError(t, err)
			assert.Equal(t, 2, report.Count(scraper.StatusStored))

			top, err := a.Manager.TopBySalary(1)
			require.NoError(t, err)
			require.Len(t, top, 1)
			assert.Equal(t, "Go Dev", top[0].Title)
			assert.Equal(t, "Go", top[0].Requirements)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://localhost", "yaml")
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestFlushMetrics(t *testing.T) {
	metrics.Register()

	cfg := testConfig(t, "http://localhost", "json")
	cfg.Monitoring.MetricsFile = filepath.Join(t.TempDir(), "metrics", "vacancies.prom")

	a, err := New(cfg, nil)
	require.NoError(t, err)
	_, err = a.Manager.Query(nil)
	require.NoError(t, err)

	a.FlushMetrics()

	data, err := os.ReadFile(cfg.Monitoring.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vacancies_storage_operations_total")
}

func TestPrintVacancies(t *testing.T) {
	from := 100000
	var buf bytes.Buffer
	PrintVacancies(&buf, []models.Vacancy{
		{Title: "Dev", Link: "l", Salary: &models.Salary{From: &from}, Description: strings.Repeat("я", 150)},
		{Title: "QA", Link: "l2"},
	})

	out := buf.String()
	assert.Contains(t, out, "1. Dev\n")
	assert.Contains(t, out, "Salary: 100000 RUB")
	assert.Contains(t, out, "Description: "+strings.Repeat("я", 100)+"...\n")
	assert.Contains(t, out, "2. QA\n")
	assert.Contains(t, out, "Salary: not specified")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, scraper.BatchReport{
		ID:      "batch-1",
		Query:   "Go",
		Fetched: 2,
		Items: []scraper.ItemResult{
			{Index: 0, Status: scraper.StatusStored},
			{Index: 1, Status: scraper.StatusInvalid, Err: errors.New("bad salary")},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Stored: 1\n")
	assert.Contains(t, out, "Invalid: 1\n")
	assert.Contains(t, out, "item 1 (invalid): bad salary")
}
