package report

import (
	"context"
	"strings"
	"testing"

	"govnews/internal/domain"
)

type stubReader struct {
	orgs      []domain.OrganisationCount
	daily     []domain.DailyCount
	dailyOrgs []domain.DailyOrganisationCount
	hourly    []domain.HourlyCount
	texts     []string
}

func (s *stubReader) ArticleCountsByOrganisation(ctx context.Context) ([]domain.OrganisationCount, error) {
	return s.orgs, nil
}

func (s *stubReader) DailyCounts(ctx context.Context) ([]domain.DailyCount, error) {
	return s.daily, nil
}

func (s *stubReader) DailyCountsByOrganisation(ctx context.Context) ([]domain.DailyOrganisationCount, error) {
	return s.dailyOrgs, nil
}

func (s *stubReader) HourlyCounts(ctx context.Context) ([]domain.HourlyCount, error) {
	return s.hourly, nil
}

func (s *stubReader) AllBodyText(ctx context.Context) ([]string, error) {
	return s.texts, nil
}

func TestWriteRendersAllSections(t *testing.T) {
	t.Parallel()

	reader := &stubReader{
		orgs:      []domain.OrganisationCount{{Organisation: "Home Office", Count: 3}},
		daily:     []domain.DailyCount{{Day: "2024-01-01", Count: 3}},
		dailyOrgs: []domain.DailyOrganisationCount{{Day: "2024-01-01", Organisation: "Home Office", Count: 3}},
		hourly:    []domain.HourlyCount{{Hour: 10, Count: 3}},
		texts:     []string{"border border controls"},
	}

	var buf strings.Builder
	writer := NewWriter(reader, 10)
	if err := writer.Write(context.Background(), &buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Articles per organisation",
		"Home Office",
		"Releases per day",
		"2024-01-01",
		"Releases by hour of day",
		"10:00 - 11:00  3",
		"00:00 - 01:00  0",
		"Top 10 words in article bodies",
		"border",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteEmptyStore(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	writer := NewWriter(&stubReader{}, 0)
	if err := writer.Write(context.Background(), &buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("empty sections should render a placeholder:\n%s", buf.String())
	}
}

func TestWordFrequencies(t *testing.T) {
	t.Parallel()

	freq := wordFrequencies([]string{
		"The border controls tighten border checks",
		"Border staff report delays at checks",
	})

	if len(freq) == 0 {
		t.Fatal("expected word counts")
	}
	if freq[0].word != "border" || freq[0].count != 3 {
		t.Fatalf("unexpected top word: %+v", freq[0])
	}

	for _, wc := range freq {
		if wc.word == "the" || wc.word == "at" {
			t.Fatalf("short and stop words must be filtered: %+v", wc)
		}
	}
}
