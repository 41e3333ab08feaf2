package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hh-vacancies-go/internal/app"
	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/metrics"
)

func main() {
	configFile := flag.String("config", "config/local.yaml", "Configuration file path")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer func() { _ = l.Sync() }()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, l.With(zap.String("cmd", "interactive")))

	s := &session{
		in:  os.Stdin,
		out: os.Stdout,
		open: func(format string) (*app.App, error) {
			cfg.Storage.Format = format
			return app.New(cfg, l)
		},
	}

	if err := s.run(ctx); err != nil {
		l.Error("session ended with error", zap.Error(err))
		os.Exit(1)
	}
}
