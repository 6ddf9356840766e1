package domain

import "time"

// FeedEntry is one normalized item from the ingested Atom feed.
type FeedEntry struct {
	ID      string
	Title   string
	Link    string
	Summary string
	Updated time.Time
}

// Enrichment holds the fields scraped from an entry's linked page.
// Either field may be nil when its extraction failed; nil is persisted
// as NULL rather than an empty string.
type Enrichment struct {
	BodyText     *string
	Organisation *string
}

// Partial reports whether at least one field could not be extracted.
func (e Enrichment) Partial() bool {
	return e.BodyText == nil || e.Organisation == nil
}

// Organisation is the publishing body an article belongs to.
// Rows are created lazily the first time a name is seen and never updated.
type Organisation struct {
	ID   int64
	Name string
}

// Article is the persisted record of one feed entry. FeedID is the
// external identifier and deduplication key; re-ingesting a known FeedID
// is a no-op.
type Article struct {
	ID             int64
	FeedID         string
	Title          string
	Link           string
	Summary        string
	Updated        time.Time
	BodyText       *string
	OrganisationID *int64
}

// RunSummary accounts for every entry seen during one ingestion pass.
// Existing+New always equals Total. Failures counts entries whose
// enrichment fully or partially failed; those articles are still persisted.
type RunSummary struct {
	Total    int
	Existing int
	New      int
	Failures int
}
