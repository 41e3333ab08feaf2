package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/internal/scraper"
	"hh-vacancies-go/internal/scraper/sources"
	"hh-vacancies-go/internal/storage"
	"hh-vacancies-go/pkg/httpclient"
)

// App holds the wired components shared by the command-line front ends.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Source  sources.VacancySource
	Store   storage.Backend
	Manager *scraper.Manager
}

// New wires source, storage and manager from cfg using cfg.Storage.Format.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := NewBackend(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := httpclient.NewHttpClient(cfg.Source.RequestTimeout, cfg.Source.UserAgent)
	source := sources.NewHHSource(client, sources.HHConfig{
		BaseURL: cfg.Source.BaseURL,
		Area:    cfg.Source.Area,
		PerPage: cfg.Source.PerPage,
	}, log)

	manager := scraper.NewManager(source, store, log).
		WithStopOnError(cfg.Scraper.StopOnError).
		WithDeduplication(cfg.Scraper.EnableDedup)

	return &App{
		Config:  cfg,
		Logger:  log,
		Source:  source,
		Store:   store,
		Manager: manager,
	}, nil
}

// NewBackend creates the instrumented backend selected by cfg.Storage.Format.
func NewBackend(cfg *config.Config, log *zap.Logger) (storage.Backend, error) {
	format, err := storage.ParseFormat(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}

	backend, err := storage.New(format, storage.Options{
		Path:       cfg.Storage.FilePath(string(format)),
		CreateDirs: cfg.Storage.CreateDirs,
		Logger:     log,
		Supabase: storage.SupabaseOptions{
			URL:   cfg.Storage.Supabase.URL,
			Key:   cfg.Storage.Supabase.Key,
			Table: cfg.Storage.Supabase.Table,
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info("storage initialized",
		zap.String("format", string(format)),
		zap.String("path", cfg.Storage.FilePath(string(format))),
	)
	return storage.Instrument(backend, string(format), log), nil
}

// FlushMetrics writes the default registry to the configured textfile, if any.
func (a *App) FlushMetrics() {
	path := a.Config.Monitoring.MetricsFile
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path, prometheus.DefaultGatherer); err != nil {
		a.Logger.Warn("failed to export metrics", zap.String("path", path), zap.Error(err))
		return
	}
	a.Logger.Debug("metrics exported", zap.String("path", path))
}
