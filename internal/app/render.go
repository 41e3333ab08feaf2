package app

import (
	"fmt"
	"io"

	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/internal/scraper"
)

const previewRunes = 100

// PrintVacancies writes a numbered, human-readable listing of vacancies.
func PrintVacancies(w io.Writer, vacancies []models.Vacancy) {
	for i, v := range vacancies {
		salary := "not specified"
		if v.HasSalary() {
			salary = fmt.Sprintf("%d RUB", v.EffectiveSalary())
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, v.Title)
		fmt.Fprintf(w, "   Link: %s\n", v.Link)
		fmt.Fprintf(w, "   Salary: %s\n", salary)
		fmt.Fprintf(w, "   Description: %s\n", preview(v.Description))
		fmt.Fprintf(w, "   Requirements: %s\n\n", preview(v.Requirements))
	}
}

// PrintReport writes a fetch-and-store summary.
func PrintReport(w io.Writer, report scraper.BatchReport) {
	fmt.Fprintln(w, "=== Fetch Results ===")
	fmt.Fprintf(w, "Batch: %s\n", report.ID)
	fmt.Fprintf(w, "Query: %s\n", report.Query)
	fmt.Fprintf(w, "Fetched: %d\n", report.Fetched)
	fmt.Fprintf(w, "Stored: %d\n", report.Count(scraper.StatusStored))
	fmt.Fprintf(w, "Invalid: %d\n", report.Count(scraper.StatusInvalid))
	fmt.Fprintf(w, "Failed: %d\n", report.Count(scraper.StatusFailed))
	fmt.Fprintf(w, "Duplicates: %d\n", report.Count(scraper.StatusDuplicate))
	if report.Aborted {
		fmt.Fprintln(w, "Aborted: true")
	}
	fmt.Fprintf(w, "Duration: %v\n", report.Duration)

	for _, item := range report.Failures() {
		fmt.Fprintf(w, "  item %d (%s): %v\n", item.Index, item.Status, item.Err)
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "..."
}
