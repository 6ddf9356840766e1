package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"govnews/internal/domain"
	"govnews/internal/ports"
)

// Extraction targets on gov.uk article pages.
const (
	bodySelector         = "div.gem-c-govspeak"
	organisationMetaName = "govuk:primary-publishing-organisation"
)

// ErrFetch marks an unreachable article page or a non-2xx response.
// The whole enrichment fails; there is no partial data without a page.
var ErrFetch = errors.New("article fetch failed")

// Enricher fetches article pages and extracts body text and the publishing
// organisation. The two extractions fail independently: a missing
// organisation tag never discards a good body text, and vice versa.
type Enricher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// NewEnricher wires an HTTP client; a nil client gets a 20s timeout default.
func NewEnricher(client *http.Client, logger *slog.Logger) *Enricher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{client: client, logger: logger}
}

// Enrich fetches link and extracts both fields best-effort. A failed fetch
// returns an error wrapping ErrFetch; a fetched page from which nothing
// could be extracted returns a non-nil Enrichment with both fields nil.
func (e *Enricher) Enrich(ctx context.Context, link string) (*domain.Enrichment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", "govnews/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: page returned %s", ErrFetch, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", ErrFetch, err)
	}

	result := &domain.Enrichment{}

	if body, ok := extractBodyText(doc); ok {
		result.BodyText = &body
	} else {
		e.logger.Warn("body text extraction failed", "link", link)
	}

	if org, ok := extractOrganisation(doc); ok {
		result.Organisation = &org
	} else {
		e.logger.Warn("organisation extraction failed", "link", link)
	}

	return result, nil
}

func extractBodyText(doc *goquery.Document) (string, bool) {
	sel := doc.Find(bodySelector)
	if sel.Length() == 0 {
		return "", false
	}

	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return "", false
	}
	return text, true
}

func extractOrganisation(doc *goquery.Document) (string, bool) {
	selector := fmt.Sprintf(`meta[name=%q]`, organisationMetaName)
	content, exists := doc.Find(selector).First().Attr("content")
	if !exists {
		return "", false
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	return content, true
}
