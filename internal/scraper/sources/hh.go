package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/pkg/httpclient"
)

const (
	// DefaultHHArea is the hh.ru region code for Russia.
	DefaultHHArea = 113
	// MaxHHPerPage is the page size requested by default and the largest one allowed.
	MaxHHPerPage = 100
)

// HHConfig holds the listing request settings for hh.ru
type HHConfig struct {
	BaseURL string
	Area    int
	PerPage int
}

// HHSource implements VacancySource for the hh.ru vacancies API
type HHSource struct {
	client  *httpclient.HttpClient
	baseURL string
	area    int
	perPage int
	logger  *zap.Logger
}

// NewHHSource creates a new hh.ru source
func NewHHSource(client *httpclient.HttpClient, cfg HHConfig, log *zap.Logger) *HHSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.hh.ru/vacancies"
	}
	if cfg.Area == 0 {
		cfg.Area = DefaultHHArea
	}
	if cfg.PerPage <= 0 || cfg.PerPage > MaxHHPerPage {
		cfg.PerPage = MaxHHPerPage
	}
	return &HHSource{
		client:  client,
		baseURL: cfg.BaseURL,
		area:    cfg.Area,
		perPage: cfg.PerPage,
		logger:  logger.OrNop(log),
	}
}

func (h *HHSource) GetName() string {
	return "HH.ru"
}

func (h *HHSource) GetBaseURL() string {
	return h.baseURL
}

// hhResponse represents the search response envelope from hh.ru
type hhResponse struct {
	Items []json.RawMessage `json:"items"`
	Found int               `json:"found"`
	Pages int               `json:"pages"`
}

// FetchVacancies requests one page of vacancies matching query. Any non-2xx
// status is a network error; nothing is retried.
func (h *HHSource) FetchVacancies(ctx context.Context, query string) ([]json.RawMessage, error) {
	params := url.Values{
		"text":     {query},
		"area":     {strconv.Itoa(h.area)},
		"per_page": {strconv.Itoa(h.perPage)},
	}

	start := time.Now()
	items, err := h.fetch(ctx, params)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		h.logger.Error("listing request failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	metrics.FetchRequestsTotal.WithLabelValues("ok").Inc()

	h.logger.Info("fetched vacancies",
		zap.String("source", h.GetName()),
		zap.String("query", query),
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return items, nil
}

func (h *HHSource) fetch(ctx context.Context, params url.Values) ([]json.RawMessage, error) {
	resp, err := h.client.Get(ctx, h.baseURL, params)
	if err != nil {
		return nil, apperrors.Network(fmt.Sprintf("failed to fetch from %s", h.GetName()), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			h.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Network(fmt.Sprintf("%s API returned status %d", h.GetName(), resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network("failed to read response body", err)
	}

	var response hhResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, apperrors.Network(fmt.Sprintf("failed to parse %s response", h.GetName()), err)
	}

	if response.Items == nil {
		return []json.RawMessage{}, nil
	}
	return response.Items, nil
}
