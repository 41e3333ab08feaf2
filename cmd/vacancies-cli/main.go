package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hh-vacancies-go/internal/app"
	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
	"hh-vacancies-go/internal/storage"
)

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type options struct {
	configFile string
	command    string
	query      string
	n          int
	keyword    string
	where      multiFlag
	format     string
	output     string
	timeout    time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "config/local.yaml", "Configuration file path")
	flag.StringVar(&opts.command, "cmd", "", "Command to run: fetch, top, search, query, delete, config")
	flag.StringVar(&opts.query, "query", "", "Search query for fetch")
	flag.IntVar(&opts.n, "n", 10, "Number of vacancies for top")
	flag.StringVar(&opts.keyword, "keyword", "", "Keyword for search")
	flag.Var(&opts.where, "where", "Filter key=value for query/delete (repeatable)")
	flag.StringVar(&opts.format, "format", "", "Storage format override: json, csv, xlsx, txt, supabase")
	flag.StringVar(&opts.output, "output", "console", "Output format: console, json")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Overall timeout for fetch (0 = none)")
	help := flag.Bool("help", false, "Show help message")
	flag.Parse()

	if *help || opts.command == "" {
		printUsage(os.Stdout)
		return
	}

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if opts.format != "" {
		cfg.Storage.Format = opts.format
	}

	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer func() { _ = l.Sync() }()

	metrics.Register()

	ctx := logger.ContextWithLogger(context.Background(), l.With(zap.String("cmd", opts.command)))
	if err := run(ctx, cfg, opts, os.Stdout, func() (*app.App, error) {
		return app.New(cfg, l)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. open is called only by commands that need storage.
func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer, open func() (*app.App, error)) error {
	if opts.command == "config" {
		return runConfigCommand(cfg, opts.output, out)
	}

	a, err := open()
	if err != nil {
		return err
	}
	defer a.FlushMetrics()

	switch opts.command {
	case "fetch":
		if opts.query == "" {
			return fmt.Errorf("-query is required for fetch")
		}
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		report, err := a.Manager.FetchAndStore(ctx, opts.query)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		if opts.output == "json" {
			return outputJSON(out, reportView(report))
		}
		app.PrintReport(out, report)
		return nil

	case "top":
		vacancies, err := a.Manager.TopBySalary(opts.n)
		if err != nil {
			return err
		}
		return outputVacancies(out, opts.output, vacancies)

	case "search":
		if opts.keyword == "" {
			return fmt.Errorf("-keyword is required for search")
		}
		vacancies, err := a.Manager.SearchByKeyword(opts.keyword)
		if err != nil {
			return err
		}
		return outputVacancies(out, opts.output, vacancies)

	case "query":
		criteria, err := storage.ParseCriteria(opts.where)
		if err != nil {
			return err
		}
		vacancies, err := a.Manager.Query(criteria)
		if err != nil {
			return err
		}
		return outputVacancies(out, opts.output, vacancies)

	case "delete":
		if len(opts.where) == 0 {
			return fmt.Errorf("delete requires at least one -where filter")
		}
		criteria, err := storage.ParseCriteria(opts.where)
		if err != nil {
			return err
		}
		if err := a.Manager.Delete(criteria); err != nil {
			return err
		}
		fmt.Fprintln(out, "Deleted matching vacancies.")
		return nil

	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", opts.command)
	}
}
