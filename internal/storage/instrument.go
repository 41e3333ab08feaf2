package storage

import (
	"time"

	"go.uber.org/zap"

	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/internal/models"
)

// instrumented decorates a Backend with Prometheus metrics and failure logging.
type instrumented struct {
	next   Backend
	name   string
	logger *zap.Logger
}

// Instrument wraps b so each operation is counted and timed under the backend label name.
func Instrument(b Backend, name string, log *zap.Logger) Backend {
	return &instrumented{next: b, name: name, logger: logger.OrNop(log)}
}

func (i *instrumented) Add(v models.Vacancy) error {
	start := time.Now()
	err := i.next.Add(v)
	i.observe("add", start, err)
	return err
}

func (i *instrumented) Query(c Criteria) ([]models.Vacancy, error) {
	start := time.Now()
	vacancies, err := i.next.Query(c)
	i.observe("query", start, err)
	return vacancies, err
}

func (i *instrumented) Delete(c Criteria) error {
	start := time.Now()
	err := i.next.Delete(c)
	i.observe("delete", start, err)
	return err
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.StorageOperationDuration.WithLabelValues(i.name, op).Observe(elapsed.Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		i.logger.Error("storage operation failed",
			zap.String("backend", i.name),
			zap.String("op", op),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	}
	metrics.StorageOperationsTotal.WithLabelValues(i.name, op, status).Inc()
}
