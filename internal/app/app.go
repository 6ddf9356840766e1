package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"govnews/internal/config"
	"govnews/internal/infrastructure/feed"
	"govnews/internal/infrastructure/scrape"
	"govnews/internal/infrastructure/storage"
	"govnews/internal/logging"
	"govnews/internal/report"
	"govnews/internal/usecase"
)

// Application wires config to the ingestion pipeline and its adapters.
type Application struct {
	cfg      config.Config
	store    *storage.Store
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New opens the store and builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Database.Path, err)
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   feed.NewAtomReader(client),
		Enricher: scrape.NewEnricher(client, baseLogger.With("component", "enricher")),
		Store:    store,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, store: store, pipeline: pipeline, logger: baseLogger}, nil
}

// Run performs one ingestion pass and, when enabled, writes the text
// report to stdout.
func (a *Application) Run(ctx context.Context) error {
	summary, err := a.pipeline.Run(ctx, a.cfg.Feed.URL)
	if err != nil {
		return err
	}

	fmt.Printf("Total articles in feed: %d\n", summary.Total)
	fmt.Printf("Articles already in database: %d\n", summary.Existing)
	fmt.Printf("New articles added: %d\n", summary.New)
	fmt.Printf("Articles with some parsing failure: %d\n", summary.Failures)

	if a.cfg.Report.Enabled {
		writer := report.NewWriter(a.store, a.cfg.Report.TopWords)
		if err := writer.Write(ctx, os.Stdout); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// Close releases the store handle.
func (a *Application) Close() error {
	return a.store.Close()
}
