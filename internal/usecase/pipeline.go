package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"govnews/internal/domain"
	"govnews/internal/infrastructure/storage"
	"govnews/internal/ports"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source   ports.FeedSource
	Enricher ports.Enricher
	Store    ports.ArticleStore
	Logger   *slog.Logger
}

// Pipeline implements one ingestion pass: read the feed, skip known
// entries, enrich and persist the rest, account for every entry.
type Pipeline struct {
	source   ports.FeedSource
	enricher ports.Enricher
	store    ports.ArticleStore
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   deps.Source,
		enricher: deps.Enricher,
		store:    deps.Store,
		logger:   logger,
	}
}

// Run performs one pass over feedURL and returns the run summary.
// A feed read failure aborts before anything is persisted. A single
// entry's enrichment failure is absorbed and counted; the entry is
// persisted with whatever was obtainable. A store failure other than a
// duplicate insert aborts the run.
func (p *Pipeline) Run(ctx context.Context, feedURL string) (domain.RunSummary, error) {
	entries, err := p.source.Read(ctx, feedURL)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("read feed: %w", err)
	}

	summary := domain.RunSummary{Total: len(entries)}

	for _, entry := range entries {
		exists, err := p.store.ExistsArticle(ctx, entry.ID)
		if err != nil {
			return summary, fmt.Errorf("check entry %s: %w", entry.ID, err)
		}
		if exists {
			summary.Existing++
			p.logger.Info("entry already stored, skipping", "feed_id", entry.ID, "title", entry.Title)
			continue
		}

		summary.New++
		if err := p.ingestEntry(ctx, entry, &summary); err != nil {
			return summary, err
		}
	}

	p.logger.Info("run complete",
		"total", summary.Total,
		"existing", summary.Existing,
		"new", summary.New,
		"failures", summary.Failures)

	return summary, nil
}

func (p *Pipeline) ingestEntry(ctx context.Context, entry domain.FeedEntry, summary *domain.RunSummary) error {
	enrichment, err := p.enricher.Enrich(ctx, entry.Link)
	if err != nil {
		summary.Failures++
		p.logger.Warn("enrichment failed, persisting bare entry", "feed_id", entry.ID, "error", err)
		enrichment = &domain.Enrichment{}
	} else if enrichment.Partial() {
		summary.Failures++
		p.logger.Warn("enrichment partially failed",
			"feed_id", entry.ID,
			"has_body", enrichment.BodyText != nil,
			"has_organisation", enrichment.Organisation != nil)
	}

	article := domain.Article{
		FeedID:   entry.ID,
		Title:    entry.Title,
		Link:     entry.Link,
		Summary:  entry.Summary,
		Updated:  entry.Updated,
		BodyText: enrichment.BodyText,
	}

	if enrichment.Organisation != nil {
		orgID, err := p.store.GetOrCreateOrganisation(ctx, *enrichment.Organisation)
		if err != nil {
			return fmt.Errorf("resolve organisation for entry %s: %w", entry.ID, err)
		}
		article.OrganisationID = &orgID
	}

	if err := p.store.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, storage.ErrDuplicateArticle) {
			// Should not happen after the existence check; the constraint
			// backstop caught it, so the existing row stands.
			p.logger.Warn("duplicate article insert rejected", "feed_id", entry.ID)
			return nil
		}
		return fmt.Errorf("persist entry %s: %w", entry.ID, err)
	}

	p.logger.Info("entry ingested",
		"feed_id", entry.ID,
		"title", entry.Title,
		"enriched", enrichment.BodyText != nil,
		"organisation", enrichment.Organisation != nil)

	return nil
}
