package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"govnews/internal/domain"
	"govnews/internal/ports"
)

// updatedLayout is the only accepted timestamp format: ISO-8601 with an
// explicit UTC offset. Offset-less timestamps are a parse error, never
// defaulted to a zone.
const updatedLayout = "2006-01-02T15:04:05Z07:00"

var (
	// ErrFetch marks an unreachable feed URL or a non-2xx response.
	ErrFetch = errors.New("feed fetch failed")
	// ErrParse marks a malformed feed document or entry.
	ErrParse = errors.New("feed parse failed")
)

// AtomReader fetches and parses the remote feed into normalized entries.
type AtomReader struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ ports.FeedSource = (*AtomReader)(nil)

// NewAtomReader wires an HTTP client; a nil client gets a 20s timeout default.
func NewAtomReader(client *http.Client) *AtomReader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &AtomReader{client: client, parser: gofeed.NewParser()}
}

// Read fetches the feed and returns all entries in feed order. Any fetch or
// parse failure fails the whole read; no partial results are returned.
func (r *AtomReader) Read(ctx context.Context, feedURL string) ([]domain.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", "govnews/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: feed returned %s", ErrFetch, resp.Status)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, err := normalizeItem(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func normalizeItem(item *gofeed.Item) (domain.FeedEntry, error) {
	id := item.GUID
	if id == "" {
		return domain.FeedEntry{}, fmt.Errorf("%w: entry without id", ErrParse)
	}
	if item.Title == "" {
		return domain.FeedEntry{}, fmt.Errorf("%w: entry %s without title", ErrParse, id)
	}
	if item.Link == "" {
		return domain.FeedEntry{}, fmt.Errorf("%w: entry %s without link", ErrParse, id)
	}

	raw := item.Updated
	if raw == "" {
		raw = item.Published
	}
	if raw == "" {
		return domain.FeedEntry{}, fmt.Errorf("%w: entry %s without updated timestamp", ErrParse, id)
	}

	updated, err := time.Parse(updatedLayout, raw)
	if err != nil {
		return domain.FeedEntry{}, fmt.Errorf("%w: entry %s updated %q: %v", ErrParse, id, raw, err)
	}

	return domain.FeedEntry{
		ID:      id,
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
		Updated: updated,
	}, nil
}
