package ports

import (
	"context"

	"govnews/internal/domain"
)

// FeedSource reads the remote feed into normalized entries, in feed order.
// A fetch or parse failure fails the whole read; no partial results.
type FeedSource interface {
	Read(ctx context.Context, feedURL string) ([]domain.FeedEntry, error)
}

// Enricher fetches an entry's linked page and extracts body text and the
// publishing organisation. A failed page fetch is an error; a fetched page
// from which neither field could be extracted is a non-nil Enrichment with
// both fields nil.
type Enricher interface {
	Enrich(ctx context.Context, link string) (*domain.Enrichment, error)
}

// ArticleStore owns the organisations and articles tables and is the
// single writer during a run.
type ArticleStore interface {
	ExistsArticle(ctx context.Context, feedID string) (bool, error)
	GetOrCreateOrganisation(ctx context.Context, name string) (int64, error)
	CreateArticle(ctx context.Context, article domain.Article) error
}

// AggregateReader exposes the committed-data aggregates consumed by the
// reporting collaborator.
type AggregateReader interface {
	ArticleCountsByOrganisation(ctx context.Context) ([]domain.OrganisationCount, error)
	DailyCounts(ctx context.Context) ([]domain.DailyCount, error)
	DailyCountsByOrganisation(ctx context.Context) ([]domain.DailyOrganisationCount, error)
	HourlyCounts(ctx context.Context) ([]domain.HourlyCount, error)
	AllBodyText(ctx context.Context) ([]string, error)
}
