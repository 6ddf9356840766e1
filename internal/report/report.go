// Package report renders descriptive statistics over the persisted
// articles as plain text: the same aggregates a charting consumer would
// plot, minus the charts.
package report

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"govnews/internal/ports"
)

const defaultTopWords = 30

var wordExpr = regexp.MustCompile(`[a-z]{4,}`)

// Common English filler skipped in the word frequency section.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"will": {}, "which": {}, "their": {}, "there": {}, "these": {}, "those": {},
	"into": {}, "more": {}, "also": {}, "other": {}, "such": {}, "when": {},
	"where": {}, "were": {}, "they": {}, "them": {}, "than": {}, "then": {},
	"about": {}, "after": {}, "before": {}, "being": {}, "between": {},
	"both": {}, "each": {}, "further": {}, "should": {}, "would": {},
	"could": {}, "while": {}, "during": {}, "under": {}, "over": {},
}

// Writer renders the aggregate queries as a text report.
type Writer struct {
	reader   ports.AggregateReader
	topWords int
}

// NewWriter builds a report writer; topWords bounds the word frequency
// section and defaults to 30 when non-positive.
func NewWriter(reader ports.AggregateReader, topWords int) *Writer {
	if topWords <= 0 {
		topWords = defaultTopWords
	}
	return &Writer{reader: reader, topWords: topWords}
}

// Write renders all sections to w. Only committed data is visible; the
// report reads through the same aggregate interface as any other consumer.
func (r *Writer) Write(ctx context.Context, w io.Writer) error {
	if err := r.writeOrganisations(ctx, w); err != nil {
		return err
	}
	if err := r.writeDaily(ctx, w); err != nil {
		return err
	}
	if err := r.writeDailyByOrganisation(ctx, w); err != nil {
		return err
	}
	if err := r.writeHourly(ctx, w); err != nil {
		return err
	}
	return r.writeWordFrequencies(ctx, w)
}

func (r *Writer) writeOrganisations(ctx context.Context, w io.Writer) error {
	counts, err := r.reader.ArticleCountsByOrganisation(ctx)
	if err != nil {
		return fmt.Errorf("organisation counts: %w", err)
	}

	fmt.Fprintln(w, "Articles per organisation")
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-50s %d\n", c.Organisation, c.Count)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Writer) writeDaily(ctx context.Context, w io.Writer) error {
	counts, err := r.reader.DailyCounts(ctx)
	if err != nil {
		return fmt.Errorf("daily counts: %w", err)
	}

	fmt.Fprintln(w, "Releases per day")
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %s  %d\n", c.Day, c.Count)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Writer) writeDailyByOrganisation(ctx context.Context, w io.Writer) error {
	counts, err := r.reader.DailyCountsByOrganisation(ctx)
	if err != nil {
		return fmt.Errorf("daily organisation counts: %w", err)
	}

	fmt.Fprintln(w, "Releases per day by organisation")
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %s  %-50s %d\n", c.Day, c.Organisation, c.Count)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Writer) writeHourly(ctx context.Context, w io.Writer) error {
	counts, err := r.reader.HourlyCounts(ctx)
	if err != nil {
		return fmt.Errorf("hourly counts: %w", err)
	}

	filled := make([]int64, 24)
	for _, c := range counts {
		if c.Hour >= 0 && c.Hour < 24 {
			filled[c.Hour] = c.Count
		}
	}

	fmt.Fprintln(w, "Releases by hour of day")
	for hour, count := range filled {
		fmt.Fprintf(w, "  %02d:00 - %02d:00  %d\n", hour, (hour+1)%24, count)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Writer) writeWordFrequencies(ctx context.Context, w io.Writer) error {
	texts, err := r.reader.AllBodyText(ctx)
	if err != nil {
		return fmt.Errorf("body texts: %w", err)
	}

	freq := wordFrequencies(texts)

	fmt.Fprintf(w, "Top %d words in article bodies\n", r.topWords)
	if len(freq) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, wc := range freq {
		if i >= r.topWords {
			break
		}
		fmt.Fprintf(w, "  %-20s %d\n", wc.word, wc.count)
	}
	return nil
}

type wordCount struct {
	word  string
	count int
}

func wordFrequencies(texts []string) []wordCount {
	counts := map[string]int{}
	for _, text := range texts {
		for _, word := range wordExpr.FindAllString(strings.ToLower(text), -1) {
			if _, skip := stopwords[word]; skip {
				continue
			}
			counts[word]++
		}
	}

	out := make([]wordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, wordCount{word: word, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].word < out[j].word
	})
	return out
}
