package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"hh-vacancies-go/internal/app"
	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/internal/scraper"
)

type itemView struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	Title  string `json:"title,omitempty"`
	Error  string `json:"error,omitempty"`
}

type batchView struct {
	ID       string     `json:"id"`
	Query    string     `json:"query"`
	Fetched  int        `json:"fetched"`
	Stored   int        `json:"stored"`
	Aborted  bool       `json:"aborted"`
	Duration string     `json:"duration"`
	Items    []itemView `json:"items"`
}

func reportView(r scraper.BatchReport) batchView {
	view := batchView{
		ID:       r.ID,
		Query:    r.Query,
		Fetched:  r.Fetched,
		Stored:   r.Count(scraper.StatusStored),
		Aborted:  r.Aborted,
		Duration: r.Duration.String(),
		Items:    make([]itemView, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		iv := itemView{Index: item.Index, Status: string(item.Status), Title: item.Vacancy.Title}
		if item.Err != nil {
			iv.Error = item.Err.Error()
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

func outputVacancies(out io.Writer, output string, vacancies []models.Vacancy) error {
	if output == "json" {
		return outputJSON(out, vacancies)
	}
	fmt.Fprintf(out, "Found %d vacancies:\n", len(vacancies))
	app.PrintVacancies(out, vacancies)
	return nil
}

func runConfigCommand(cfg *config.Config, output string, out io.Writer) error {
	masked := *cfg
	masked.Storage.Supabase.Key = maskString(cfg.Storage.Supabase.Key)

	if output == "json" {
		view, err := configView(&masked)
		if err != nil {
			return err
		}
		return outputJSON(out, view)
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintf(out, "Source URL: %s\n", cfg.Source.BaseURL)
	fmt.Fprintf(out, "Area: %d\n", cfg.Source.Area)
	fmt.Fprintf(out, "Per Page: %d\n", cfg.Source.PerPage)
	fmt.Fprintf(out, "Request Timeout: %v\n", cfg.Source.RequestTimeout)
	fmt.Fprintf(out, "Storage Format: %s\n", cfg.Storage.Format)
	if path := cfg.Storage.FilePath(cfg.Storage.Format); path != "" {
		fmt.Fprintf(out, "Storage File: %s\n", path)
	}
	fmt.Fprintf(out, "Supabase URL: %s\n", cfg.Storage.Supabase.URL)
	fmt.Fprintf(out, "Supabase Key: %s\n", masked.Storage.Supabase.Key)
	fmt.Fprintf(out, "Stop On Error: %t\n", cfg.Scraper.StopOnError)
	fmt.Fprintf(out, "Deduplication: %t\n", cfg.Scraper.EnableDedup)
	fmt.Fprintf(out, "Logging: %s/%s\n", cfg.Logging.Env, cfg.Logging.Level)
	return nil
}

// configView renders cfg with the same keys and duration notation as the YAML config file.
func configView(cfg *config.Config) (map[string]any, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	view := map[string]any{}
	if err := yaml.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return view, nil
}

func outputJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "hh.ru Vacancies CLI Tool")
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  vacancies-cli -cmd <command> [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  -cmd fetch    - Fetch vacancies from hh.ru and store them")
	fmt.Fprintln(out, "  -cmd top      - Show top N stored vacancies by salary")
	fmt.Fprintln(out, "  -cmd search   - Search stored vacancies by keyword")
	fmt.Fprintln(out, "  -cmd query    - List stored vacancies matching -where filters")
	fmt.Fprintln(out, "  -cmd delete   - Delete stored vacancies matching -where filters")
	fmt.Fprintln(out, "  -cmd config   - Show configuration")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  -config string   - Configuration file (default: config/local.yaml)")
	fmt.Fprintln(out, "  -query string    - Search query for fetch")
	fmt.Fprintln(out, "  -n int           - Number of vacancies for top (default: 10)")
	fmt.Fprintln(out, "  -keyword string  - Keyword for search")
	fmt.Fprintln(out, "  -where key=value - Filter, repeatable (keyword, min_salary, title, link, salary, description, requirements)")
	fmt.Fprintln(out, "  -format string   - Storage format: json, csv, xlsx, txt, supabase")
	fmt.Fprintln(out, "  -output string   - Output format: console, json (default: console)")
	fmt.Fprintln(out, "  -timeout dur     - Overall timeout for fetch")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  vacancies-cli -cmd fetch -query \"Python developer\" -format csv")
	fmt.Fprintln(out, "  vacancies-cli -cmd top -n 5 -output json")
	fmt.Fprintln(out, "  vacancies-cli -cmd query -where min_salary=150000 -where keyword=django")
	fmt.Fprintln(out, "  vacancies-cli -cmd delete -where link=https://hh.ru/vacancy/1")
}
