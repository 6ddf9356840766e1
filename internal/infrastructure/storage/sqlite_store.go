package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"govnews/internal/domain"
	"govnews/internal/ports"
)

var (
	// ErrDuplicateArticle marks an insert for a feed_id that already exists.
	// The upstream existence check should prevent it; the UNIQUE constraint
	// enforces it independently.
	ErrDuplicateArticle = errors.New("article already exists")
	// ErrUnavailable marks a store that cannot be opened or queried.
	ErrUnavailable = errors.New("store unavailable")
)

// updated is stored as UTC text so that sqlite date() and strftime() work
// on it directly.
const updatedFormat = "2006-01-02 15:04:05"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS organisations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY,
		feed_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		summary TEXT,
		updated TEXT NOT NULL,
		body_text TEXT,
		organisation_id INTEGER REFERENCES organisations(id)
	)`,
}

// Store persists organisations and articles in a single SQLite file.
type Store struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*Store)(nil)
var _ ports.AggregateReader = (*Store)(nil)

// Open creates the database file (and its parent directory) if absent,
// applies the schema, and returns a ready store. Schema initialization is
// idempotent.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %v", ErrUnavailable, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %v", ErrUnavailable, err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: apply schema: %v", ErrUnavailable, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExistsArticle reports whether an article with this feed_id is already stored.
func (s *Store) ExistsArticle(ctx context.Context, feedID string) (bool, error) {
	query, args, err := sq.Select("1").
		From("articles").
		Where(sq.Eq{"feed_id": feedID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", ErrUnavailable, feedID, err)
	}
	return true, nil
}

// GetOrCreateOrganisation returns the id of the organisation row with this
// name, inserting it first if absent. Calling it repeatedly with the same
// name returns the same id; the UNIQUE constraint keeps this correct under
// concurrent writers, where the insert loser re-reads the winner's row.
func (s *Store) GetOrCreateOrganisation(ctx context.Context, name string) (int64, error) {
	id, err := s.findOrganisation(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: find organisation %q: %v", ErrUnavailable, name, err)
	}

	query, args, err := sq.Insert("organisations").
		Columns("name").
		Values(name).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build organisation insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return s.rereadOrganisation(ctx, name)
		}
		return 0, fmt.Errorf("%w: insert organisation %q: %v", ErrUnavailable, name, err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: organisation id: %v", ErrUnavailable, err)
	}
	return id, nil
}

func (s *Store) rereadOrganisation(ctx context.Context, name string) (int64, error) {
	id, err := s.findOrganisation(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("%w: reread organisation %q: %v", ErrUnavailable, name, err)
	}
	return id, nil
}

func (s *Store) findOrganisation(ctx context.Context, name string) (int64, error) {
	query, args, err := sq.Select("id").
		From("organisations").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build organisation query: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateArticle inserts one article row inside its own transaction, so a
// crash mid-run never leaves a partial row. A feed_id collision returns
// ErrDuplicateArticle instead of overwriting the existing row.
func (s *Store) CreateArticle(ctx context.Context, article domain.Article) error {
	query, args, err := sq.Insert("articles").
		Columns("feed_id", "title", "link", "summary", "updated", "body_text", "organisation_id").
		Values(
			article.FeedID,
			article.Title,
			article.Link,
			article.Summary,
			article.Updated.UTC().Format(updatedFormat),
			nullableString(article.BodyText),
			nullableInt64(article.OrganisationID),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build article insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: feed_id %s", ErrDuplicateArticle, article.FeedID)
		}
		return fmt.Errorf("%w: insert article %s: %v", ErrUnavailable, article.FeedID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit article %s: %v", ErrUnavailable, article.FeedID, err)
	}
	return nil
}

// ArticleCountsByOrganisation returns per-organisation article counts,
// most prolific first.
func (s *Store) ArticleCountsByOrganisation(ctx context.Context) ([]domain.OrganisationCount, error) {
	query, args, err := sq.Select("o.name", "COUNT(a.id)").
		From("organisations o").
		Join("articles a ON a.organisation_id = o.id").
		GroupBy("o.name").
		OrderBy("COUNT(a.id) DESC", "o.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build organisation counts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: organisation counts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var counts []domain.OrganisationCount
	for rows.Next() {
		var c domain.OrganisationCount
		if err := rows.Scan(&c.Organisation, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan organisation count: %v", ErrUnavailable, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DailyCounts returns the number of articles released per UTC day.
func (s *Store) DailyCounts(ctx context.Context) ([]domain.DailyCount, error) {
	query, args, err := sq.Select("date(updated)", "COUNT(id)").
		From("articles").
		GroupBy("date(updated)").
		OrderBy("date(updated)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily counts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: daily counts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var counts []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan daily count: %v", ErrUnavailable, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DailyCountsByOrganisation returns per-day counts broken down by
// organisation. Articles with no organisation are excluded.
func (s *Store) DailyCountsByOrganisation(ctx context.Context) ([]domain.DailyOrganisationCount, error) {
	query, args, err := sq.Select("date(a.updated)", "o.name", "COUNT(a.id)").
		From("articles a").
		Join("organisations o ON o.id = a.organisation_id").
		GroupBy("date(a.updated)", "o.name").
		OrderBy("date(a.updated)", "o.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily organisation counts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: daily organisation counts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var counts []domain.DailyOrganisationCount
	for rows.Next() {
		var c domain.DailyOrganisationCount
		if err := rows.Scan(&c.Day, &c.Organisation, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan daily organisation count: %v", ErrUnavailable, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// HourlyCounts returns the number of articles released per hour of day
// across all days. Hours with no releases are absent.
func (s *Store) HourlyCounts(ctx context.Context) ([]domain.HourlyCount, error) {
	query, args, err := sq.Select("CAST(strftime('%H', updated) AS INTEGER)", "COUNT(id)").
		From("articles").
		GroupBy("strftime('%H', updated)").
		OrderBy("strftime('%H', updated)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hourly counts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: hourly counts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var counts []domain.HourlyCount
	for rows.Next() {
		var c domain.HourlyCount
		if err := rows.Scan(&c.Hour, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan hourly count: %v", ErrUnavailable, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AllBodyText returns the body text of every article that has one.
func (s *Store) AllBodyText(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("body_text").
		From("articles").
		Where("body_text IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build body text query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: body texts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("%w: scan body text: %v", ErrUnavailable, err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
