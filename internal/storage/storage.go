package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ovolkova/confwatch/internal/item"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	parser       TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	title        TEXT,
	date_raw     TEXT,
	details      TEXT,
	urls_json    TEXT NOT NULL,
	emails_json  TEXT NOT NULL,
	fetched_at   TIMESTAMP NOT NULL,
	content_hash TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_items_hash ON items(content_hash);
CREATE INDEX IF NOT EXISTS ix_items_parser ON items(parser);
CREATE INDEX IF NOT EXISTS ix_items_fetched_at ON items(fetched_at);
`

// Outcome reports what happened to a single insert attempt.
type Outcome int

const (
	// Inserted means a new row was written.
	Inserted Outcome = iota
	// Duplicate means a row with the same content hash already exists.
	Duplicate
)

// Store owns the items table and all read/write paths to it.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the SQLite database at path. The parent
// directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// _busy_timeout keeps concurrent writers from failing with SQLITE_BUSY
	// while another insert holds the write lock.
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Store{db: db}, nil
}

// Init creates the items table and its indexes. Safe to call on every startup.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertIfNew attempts to insert the item, computing its content hash when
// absent. A row whose hash already exists is silently skipped and reported
// as Duplicate. Any other failure is a storage error that should abort the
// current pass.
func (s *Store) InsertIfNew(ctx context.Context, it *item.Item) (Outcome, error) {
	if it.ContentHash == "" {
		it.ContentHash = item.Fingerprint(it)
	}

	urlsJSON, err := json.Marshal(it.URLs)
	if err != nil {
		return Duplicate, fmt.Errorf("encoding urls: %w", err)
	}
	emailsJSON, err := json.Marshal(it.Emails)
	if err != nil {
		return Duplicate, fmt.Errorf("encoding emails: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items
			(parser, source_url, title, date_raw, details, urls_json, emails_json, fetched_at, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING`,
		it.Parser, it.SourceURL, it.Title, it.DateRaw, it.Details,
		string(urlsJSON), string(emailsJSON), it.FetchedAt.UTC(), it.ContentHash,
	)
	if err != nil {
		return Duplicate, fmt.Errorf("inserting item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Duplicate, fmt.Errorf("reading insert result: %w", err)
	}
	if n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// Filter narrows Export results. Zero values mean "no constraint".
type Filter struct {
	Parser string
	Since  time.Time
	Until  time.Time
}

// row mirrors the items table for sqlx scanning.
type row struct {
	ID          int64     `db:"id"`
	Parser      string    `db:"parser"`
	SourceURL   string    `db:"source_url"`
	Title       string    `db:"title"`
	DateRaw     string    `db:"date_raw"`
	Details     string    `db:"details"`
	URLsJSON    string    `db:"urls_json"`
	EmailsJSON  string    `db:"emails_json"`
	FetchedAt   time.Time `db:"fetched_at"`
	ContentHash string    `db:"content_hash"`
}

// Export reads items matching the filter in ascending fetched_at order
// (id breaks ties so the order is stable).
func (s *Store) Export(ctx context.Context, f Filter) ([]item.Item, error) {
	query := `SELECT id, parser, source_url, title, date_raw, details,
		urls_json, emails_json, fetched_at, content_hash FROM items WHERE 1=1`
	var args []any

	if f.Parser != "" {
		query += " AND parser = ?"
		args = append(args, f.Parser)
	}
	if !f.Since.IsZero() {
		query += " AND fetched_at >= ?"
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		query += " AND fetched_at <= ?"
		args = append(args, f.Until.UTC())
	}
	query += " ORDER BY fetched_at ASC, id ASC"

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}

	items := make([]item.Item, 0, len(rows))
	for _, r := range rows {
		it := item.Item{
			Parser:      r.Parser,
			SourceURL:   r.SourceURL,
			Title:       r.Title,
			DateRaw:     r.DateRaw,
			Details:     r.Details,
			FetchedAt:   r.FetchedAt,
			ContentHash: r.ContentHash,
		}
		if err := json.Unmarshal([]byte(r.URLsJSON), &it.URLs); err != nil {
			return nil, fmt.Errorf("decoding urls for item %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.EmailsJSON), &it.Emails); err != nil {
			return nil, fmt.Errorf("decoding emails for item %d: %w", r.ID, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// CountByParser returns the number of stored rows per source parser.
func (s *Store) CountByParser(ctx context.Context) (map[string]int, error) {
	type countRow struct {
		Parser string `db:"parser"`
		N      int    `db:"n"`
	}

	var rows []countRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT parser, COUNT(*) AS n FROM items GROUP BY parser`)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Parser] = r.N
	}
	return counts, nil
}
