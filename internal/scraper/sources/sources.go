package sources

import (
	"context"
	"encoding/json"
)

// VacancySource represents a vacancy listing service
type VacancySource interface {
	GetName() string
	GetBaseURL() string
	// FetchVacancies returns the raw items of a single result page for the query.
	FetchVacancies(ctx context.Context, query string) ([]json.RawMessage, error)
}
