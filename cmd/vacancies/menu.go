package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hh-vacancies-go/internal/app"
	"hh-vacancies-go/internal/scraper"
	"hh-vacancies-go/internal/storage"
)

// formatChoices maps the storage menu entries to backend formats.
var formatChoices = map[string]struct {
	label  string
	format storage.Format
}{
	"1": {"JSON", storage.FormatJSON},
	"2": {"CSV", storage.FormatCSV},
	"3": {"Excel", storage.FormatXLSX},
	"4": {"TXT", storage.FormatTXT},
}

// session runs the interactive menu over in/out.
type session struct {
	in   io.Reader
	out  io.Writer
	open func(format string) (*app.App, error)

	scanner *bufio.Scanner
	app     *app.App
}

func (s *session) run(ctx context.Context) error {
	s.scanner = bufio.NewScanner(s.in)

	fmt.Fprintln(s.out, "Welcome to the hh.ru vacancies tool!")
	fmt.Fprintln(s.out, "\nChoose a storage format:")
	fmt.Fprintln(s.out, "1. JSON")
	fmt.Fprintln(s.out, "2. CSV")
	fmt.Fprintln(s.out, "3. Excel")
	fmt.Fprintln(s.out, "4. TXT")

	choice, ok := s.prompt("Enter an option (1-4): ")
	if !ok {
		return nil
	}
	selected, known := formatChoices[choice]
	if !known {
		fmt.Fprintln(s.out, "Invalid choice. Using JSON by default.")
		selected = formatChoices["1"]
	}

	a, err := s.open(string(selected.format))
	if err != nil {
		return err
	}
	s.app = a
	defer s.app.FlushMetrics()

	fmt.Fprintf(s.out, "Using %s storage: %s\n", selected.label, a.Config.Storage.FilePath(string(selected.format)))

	for {
		fmt.Fprintln(s.out, "\nMenu:")
		fmt.Fprintln(s.out, "1. Search vacancies on hh.ru")
		fmt.Fprintln(s.out, "2. Show top N vacancies by salary")
		fmt.Fprintln(s.out, "3. Search vacancies by keyword in description")
		fmt.Fprintln(s.out, "4. Exit")

		action, ok := s.prompt("Choose an action (1-4): ")
		if !ok || ctx.Err() != nil {
			return nil
		}

		switch action {
		case "1":
			s.fetch(ctx)
		case "2":
			s.top()
		case "3":
			s.search()
		case "4":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please enter a number from 1 to 4.")
		}
	}
}

func (s *session) fetch(ctx context.Context) {
	query, ok := s.prompt("Enter a search query (e.g. Python developer): ")
	if !ok {
		return
	}

	report, err := s.app.Manager.FetchAndStore(ctx, query)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to fetch vacancies: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Vacancies for '%s' saved: %d stored, %d skipped.\n",
		query, report.Count(scraper.StatusStored), len(report.Items)-report.Count(scraper.StatusStored))
}

func (s *session) top() {
	answer, ok := s.prompt("Enter the number of vacancies to show (N): ")
	if !ok {
		return
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		fmt.Fprintln(s.out, "Please enter a valid number.")
		return
	}

	vacancies, err := s.app.Manager.TopBySalary(n)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read vacancies: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "\nTop %d vacancies by salary:\n", n)
	app.PrintVacancies(s.out, vacancies)
}

func (s *session) search() {
	keyword, ok := s.prompt("Enter a keyword to search in descriptions: ")
	if !ok {
		return
	}

	vacancies, err := s.app.Manager.SearchByKeyword(keyword)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read vacancies: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "\nFound %d vacancies with keyword '%s':\n", len(vacancies), keyword)
	app.PrintVacancies(s.out, vacancies)
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (s *session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}
