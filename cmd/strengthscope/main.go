package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/cli"
	"github.com/alexanderramin/strengthscope/internal/config"
	"github.com/alexanderramin/strengthscope/internal/db"
	"github.com/alexanderramin/strengthscope/internal/llm"
	"github.com/alexanderramin/strengthscope/internal/metrics"
	"github.com/alexanderramin/strengthscope/internal/narrative"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/service"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version, wire).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds every service from resolved configuration.
func wire(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	if unmapped := cat.Unmapped(); len(unmapped) > 0 {
		logger.Warn("traits without a category are left out of category totals", "traits", unmapped)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}

	sessions, err := openSessions(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	narrator, cache, err := openNarrator(cfg, logger, m, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	app := &cli.App{
		Config:  cfg,
		Catalog: cat,
		Assessments: service.NewAssessmentService(cat, sessions, narrator, m,
			service.NewSlogUseCaseObserver(logger)),
		Metrics:  m,
		Registry: reg,
		Logger:   logger,
		Version:  version,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	if cache != nil {
		app.Narratives = cache
	}
	return app, cleanup, nil
}

func openSessions(ctx context.Context, cfg *config.Config, closers *[]func() error) (repository.SessionRepo, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return repository.NewMemorySessionRepo(cfg.Session.Capacity, cfg.Session.TTL), nil
	}

	client, err := repository.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, client.Close)

	repo := repository.NewRedisSessionRepo(client, cfg.Session.TTL)
	if err := repo.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return repo, nil
}

// openNarrator returns a narrator that always yields the placeholder when
// the LLM is disabled. The SQLite cache is only opened for an enabled LLM.
func openNarrator(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, closers *[]func() error) (*narrative.Service, *repository.SQLiteNarrativeRepo, error) {
	if !cfg.LLM.Enabled {
		return narrative.NewService(nil, narrative.WithLogger(logger)), nil, nil
	}

	var observer llm.Observer = m
	if cfg.LLM.LogCalls {
		observer = llm.MultiObserver{m, llm.NewSlogObserver(logger)}
	}
	client, err := llm.NewClient(cfg.LLMConfig(), observer)
	if err != nil {
		return nil, nil, err
	}

	opts := []narrative.Option{
		narrative.WithTimeout(cfg.NarrativeTimeout()),
		narrative.WithModel(client.Model()),
		narrative.WithLogger(logger),
	}

	var cache *repository.SQLiteNarrativeRepo
	if cfg.Cache.Path != "" {
		database, err := db.OpenDB(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening narrative cache: %w", err)
		}
		*closers = append(*closers, database.Close)
		cache = repository.NewSQLiteNarrativeRepo(database)
		opts = append(opts, narrative.WithCache(cache))
	}

	return narrative.NewService(narrative.NewLLMGenerator(client), opts...), cache, nil
}
