package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedDocument = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>News and communications</title>
  <updated>2024-01-02T09:30:00+00:00</updated>
  <entry>
    <id>https://www.gov.uk/government/news/second</id>
    <title>Second announcement</title>
    <link href="https://www.gov.uk/government/news/second"/>
    <summary>Second summary</summary>
    <updated>2024-01-02T09:30:00+00:00</updated>
  </entry>
  <entry>
    <id>https://www.gov.uk/government/news/first</id>
    <title>First announcement</title>
    <link href="https://www.gov.uk/government/news/first"/>
    <summary>First summary</summary>
    <updated>2024-01-01T10:00:00+00:00</updated>
  </entry>
</feed>`

func TestAtomReaderRead(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(feedDocument))
	}))
	defer server.Close()

	reader := NewAtomReader(server.Client())
	entries, err := reader.Read(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "https://www.gov.uk/government/news/second" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.Title != "Second announcement" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Link != "https://www.gov.uk/government/news/second" {
		t.Fatalf("unexpected link: %s", first.Link)
	}
	if first.Summary != "Second summary" {
		t.Fatalf("unexpected summary: %s", first.Summary)
	}

	want := time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC)
	if !first.Updated.Equal(want) {
		t.Fatalf("unexpected updated: %v", first.Updated)
	}

	if entries[1].ID != "https://www.gov.uk/government/news/first" {
		t.Fatalf("feed order not preserved: %s", entries[1].ID)
	}
}

func TestAtomReaderRejectsOffsetlessTimestamp(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>e1</id>
    <title>A</title>
    <link href="http://x/1"/>
    <summary>s</summary>
    <updated>2024-01-01T10:00:00</updated>
  </entry>
</feed>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer server.Close()

	reader := NewAtomReader(server.Client())
	entries, err := reader.Read(context.Background(), server.URL)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no partial results, got %d entries", len(entries))
	}
}

func TestAtomReaderRejectsEntryWithoutID(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>A</title>
    <link href="http://x/1"/>
    <updated>2024-01-01T10:00:00+00:00</updated>
  </entry>
</feed>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer server.Close()

	reader := NewAtomReader(server.Client())
	if _, err := reader.Read(context.Background(), server.URL); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestAtomReaderFetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	reader := NewAtomReader(server.Client())
	if _, err := reader.Read(context.Background(), server.URL); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestAtomReaderParseFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	reader := NewAtomReader(server.Client())
	if _, err := reader.Read(context.Background(), server.URL); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
