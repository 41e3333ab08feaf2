package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/internal/scraper/sources"
	"hh-vacancies-go/internal/storage"
)

// ItemStatus is the outcome of ingesting one fetched item.
type ItemStatus string

const (
	StatusStored    ItemStatus = "stored"
	StatusInvalid   ItemStatus = "invalid"
	StatusFailed    ItemStatus = "failed"
	StatusDuplicate ItemStatus = "duplicate"
)

// ItemResult reports what happened to the item at Index in the fetched batch.
type ItemResult struct {
	Index   int
	Status  ItemStatus
	Vacancy models.Vacancy
	Err     error
}

// BatchReport summarizes one FetchAndStore call.
type BatchReport struct {
	ID       string
	Query    string
	Fetched  int
	Items    []ItemResult
	Aborted  bool
	Duration time.Duration
}

// Count returns the number of items with the given status.
func (r BatchReport) Count(status ItemStatus) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the items that were not stored because of an error.
func (r BatchReport) Failures() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// Manager ties a vacancy source to a storage backend
type Manager struct {
	source      sources.VacancySource
	store       storage.Backend
	logger      *zap.Logger
	stopOnError bool
	dedup       bool
}

// NewManager creates a manager. Items failing validation or storage are skipped
// unless WithStopOnError is set.
func NewManager(source sources.VacancySource, store storage.Backend, log *zap.Logger) *Manager {
	return &Manager{
		source: source,
		store:  store,
		logger: logger.OrNop(log),
	}
}

// WithStopOnError makes FetchAndStore abort at the first failed item
func (m *Manager) WithStopOnError(stop bool) *Manager {
	m.stopOnError = stop
	return m
}

// WithDeduplication drops repeated title+link pairs within one fetched batch
func (m *Manager) WithDeduplication(enabled bool) *Manager {
	m.dedup = enabled
	return m
}

// FetchAndStore fetches vacancies for query and adds each one to the store.
// A fetch failure is returned unchanged and nothing is stored.
func (m *Manager) FetchAndStore(ctx context.Context, query string) (BatchReport, error) {
	start := time.Now()
	report := BatchReport{ID: uuid.NewString(), Query: query}
	log := logger.FromContextOr(ctx, m.logger).With(zap.String("batch_id", report.ID), zap.String("query", query))

	items, err := m.source.FetchVacancies(ctx, query)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	report.Fetched = len(items)

	var dedup *Deduplicator
	if m.dedup {
		dedup = NewDeduplicator()
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			report.Duration = time.Since(start)
			return report, fmt.Errorf("fetch-and-store interrupted: %w", err)
		}

		result := m.ingest(i, item, dedup)
		report.Items = append(report.Items, result)
		metrics.IngestedTotal.WithLabelValues(string(result.Status)).Inc()

		if result.Err != nil {
			log.Warn("skipping vacancy",
				zap.Int("index", i),
				zap.String("status", string(result.Status)),
				zap.String("title", result.Vacancy.Title),
				zap.Error(result.Err),
			)
			if m.stopOnError {
				report.Aborted = true
				break
			}
		}
	}

	report.Duration = time.Since(start)
	log.Info("fetch-and-store completed",
		zap.Int("fetched", report.Fetched),
		zap.Int("stored", report.Count(StatusStored)),
		zap.Int("invalid", report.Count(StatusInvalid)),
		zap.Int("failed", report.Count(StatusFailed)),
		zap.Int("duplicates", report.Count(StatusDuplicate)),
		zap.Bool("aborted", report.Aborted),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (m *Manager) ingest(index int, item json.RawMessage, dedup *Deduplicator) ItemResult {
	v, err := models.FromRaw(item)
	if err != nil {
		return ItemResult{Index: index, Status: StatusInvalid, Err: err}
	}
	if dedup != nil && dedup.Observe(v) {
		return ItemResult{Index: index, Status: StatusDuplicate, Vacancy: v}
	}
	if err := m.store.Add(v); err != nil {
		return ItemResult{Index: index, Status: StatusFailed, Vacancy: v, Err: err}
	}
	return ItemResult{Index: index, Status: StatusStored, Vacancy: v}
}

// TopBySalary returns up to n stored vacancies ordered by effective salary, highest
// first. Equal salaries keep their stored order.
func (m *Manager) TopBySalary(n int) ([]models.Vacancy, error) {
	if n <= 0 {
		return []models.Vacancy{}, nil
	}

	vacancies, err := m.store.Query(nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(vacancies, func(i, j int) bool {
		return vacancies[i].EffectiveSalary() > vacancies[j].EffectiveSalary()
	})

	if n > len(vacancies) {
		n = len(vacancies)
	}
	return vacancies[:n], nil
}

// SearchByKeyword returns stored vacancies mentioning keyword in description or requirements
func (m *Manager) SearchByKeyword(keyword string) ([]models.Vacancy, error) {
	return m.store.Query(storage.Criteria{storage.Keyword(keyword)})
}

// Query returns stored vacancies matching c
func (m *Manager) Query(c storage.Criteria) ([]models.Vacancy, error) {
	return m.store.Query(c)
}

// Delete removes stored vacancies matching c
func (m *Manager) Delete(c storage.Criteria) error {
	return m.store.Delete(c)
}
