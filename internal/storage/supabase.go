package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	supabase "github.com/nedpals/supabase-go"
	"go.uber.org/zap"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

// SupabaseBackend uses the nedpals/supabase-go SDK to persist vacancies in a
// PostgREST table with columns id, title, link, salary (jsonb), description, requirements.
type SupabaseBackend struct {
	client *supabase.Client
	table  string
	logger *zap.Logger
}

// supabaseRow is the insert shape. id is assigned by the database.
type supabaseRow struct {
	ID           int            `json:"id,omitempty"`
	Title        string         `json:"title"`
	Link         string         `json:"link"`
	Salary       *models.Salary `json:"salary"`
	Description  string         `json:"description"`
	Requirements string         `json:"requirements"`
}

type storedRow struct {
	ID     int
	Record models.Vacancy
}

// NewSupabaseBackend creates a SupabaseBackend. It reads SUPABASE_URL and SUPABASE_KEY
// from environment variables if empty values are provided.
func NewSupabaseBackend(opts Options) (*SupabaseBackend, error) {
	url, key, table := opts.Supabase.URL, opts.Supabase.Key, opts.Supabase.Table
	if url == "" {
		url = os.Getenv("SUPABASE_URL")
	}
	if key == "" {
		key = os.Getenv("SUPABASE_KEY")
	}
	if url == "" || key == "" {
		return nil, apperrors.InvalidInput("supabase URL and key must be provided via config or SUPABASE_URL / SUPABASE_KEY env vars", nil)
	}
	if table == "" {
		table = "vacancies"
	}

	return &SupabaseBackend{
		client: supabase.CreateClient(url, key),
		table:  table,
		logger: logger.OrNop(opts.Logger),
	}, nil
}

func (s *SupabaseBackend) Add(v models.Vacancy) error {
	row := supabaseRow{
		Title:        v.Title,
		Link:         v.Link,
		Salary:       v.Salary,
		Description:  v.Description,
		Requirements: v.Requirements,
	}

	var results []json.RawMessage
	if err := s.client.DB.From(s.table).Insert(row).Execute(&results); err != nil {
		return apperrors.StorageWrite(fmt.Sprintf("failed to insert into %s", s.table), err)
	}
	return nil
}

func (s *SupabaseBackend) Query(c Criteria) ([]models.Vacancy, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}

	vacancies := make([]models.Vacancy, 0, len(rows))
	for _, row := range rows {
		if c.Match(row.Record) {
			vacancies = append(vacancies, row.Record)
		}
	}
	return vacancies, nil
}

// Delete removes matching rows one by one, by id.
func (s *SupabaseBackend) Delete(c Criteria) error {
	rows, err := s.load()
	if err != nil {
		return err
	}

	for _, row := range rows {
		if !c.Match(row.Record) {
			continue
		}
		var results []json.RawMessage
		err := s.client.DB.From(s.table).Delete().Eq("id", strconv.Itoa(row.ID)).Execute(&results)
		if err != nil {
			return apperrors.StorageWrite(fmt.Sprintf("failed to delete row %d from %s", row.ID, s.table), err)
		}
	}
	return nil
}

// load selects every row, in table order. Rows with an invalid salary are skipped.
func (s *SupabaseBackend) load() ([]storedRow, error) {
	var raw []json.RawMessage
	if err := s.client.DB.From(s.table).Select("*").Execute(&raw); err != nil {
		return nil, apperrors.StorageRead(fmt.Sprintf("failed to select from %s", s.table), err)
	}

	rows := make([]storedRow, 0, len(raw))
	for _, el := range raw {
		var id struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(el, &id); err != nil {
			return nil, apperrors.StorageRead("failed to decode row id", err)
		}
		v, err := models.FromStored(el)
		if err != nil {
			s.logger.Warn("skipping invalid stored vacancy", zap.String("table", s.table), zap.Int("id", id.ID), zap.Error(err))
			continue
		}
		rows = append(rows, storedRow{ID: id.ID, Record: v})
	}
	return rows, nil
}
