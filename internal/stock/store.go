package stock

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ============================================================
// SQLite Store
// ============================================================

// Store keeps the latest quote per country in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("stock: mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("stock: open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init applies the schema migrations in order.
func (s *Store) Init(ctx context.Context) error {
	names, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("stock: migrations: %w", err)
	}
	for _, e := range names {
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("stock: read migration %s: %w", e.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("stock: apply migration %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put validates and upserts the quote for code.
func (s *Store) Put(ctx context.Context, code string, q Quote) error {
	code = normalizeCode(code)
	if len(code) != 2 {
		return fmt.Errorf("stock: invalid country code %q", code)
	}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("stock: %s: %w", code, err)
	}
	var updated string
	if !q.UpdatedAt.IsZero() {
		updated = q.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO quotes (code, idx, value, change_percent, source, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(code) DO UPDATE SET
            idx = excluded.idx,
            value = excluded.value,
            change_percent = excluded.change_percent,
            source = excluded.source,
            updated_at = excluded.updated_at
    `, code, q.Index, q.Value, q.ChangePercent, q.Source, updated)
	if err != nil {
		return fmt.Errorf("stock: put %s: %w", code, err)
	}
	return nil
}

// Get returns the stored quote for code with status "ok", or ErrNotFound.
func (s *Store) Get(ctx context.Context, code string) (Quote, error) {
	code = normalizeCode(code)
	row := s.db.QueryRowContext(ctx, `
        SELECT idx, value, change_percent, source, updated_at
        FROM quotes
        WHERE code = ?
    `, code)

	var q Quote
	var updated string
	if err := row.Scan(&q.Index, &q.Value, &q.ChangePercent, &q.Source, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, fmt.Errorf("%w: %s", ErrNotFound, code)
		}
		return Quote{}, fmt.Errorf("stock: get %s: %w", code, err)
	}
	if updated != "" {
		t, err := time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return Quote{}, fmt.Errorf("stock: get %s: updated_at: %w", code, err)
		}
		q.UpdatedAt = t
	}
	q.Status = StatusOK
	return q, nil
}

// Codes lists the countries with a stored quote.
func (s *Store) Codes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM quotes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("stock: list: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("stock: list: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ============================================================
// Cache Import
// ============================================================

// cacheEntry is one country of a stocks_cache.json file. Numbers are
// pointers so that nulls and missing fields can be told apart from zero.
type cacheEntry struct {
	Index         string   `json:"index"`
	Value         *float64 `json:"value"`
	ChangePercent *float64 `json:"change_percent"`
	Source        string   `json:"source"`
	UpdatedAt     string   `json:"updated_at"`
}

// ImportResult summarises an import.
type ImportResult struct {
	Imported int
	Skipped  map[string]string // code -> reason
}

// Import loads a stock cache document ({"RO": {...}, ...}) into the store.
// Entries that fail validation are skipped and reported, not fatal.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("stock: decode cache: %w", err)
	}
	codes := make([]string, 0, len(doc))
	for code := range doc {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	res := ImportResult{Skipped: map[string]string{}}
	for _, code := range codes {
		q, err := decodeEntry(doc[code])
		if err == nil {
			err = s.Put(ctx, code, q)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Skipped[normalizeCode(code)] = err.Error()
			continue
		}
		res.Imported++
	}
	return res, nil
}

func decodeEntry(raw json.RawMessage) (Quote, error) {
	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Quote{}, fmt.Errorf("malformed entry: %w", err)
	}
	if e.Value == nil {
		return Quote{}, errors.New("value is not a number")
	}
	if e.ChangePercent == nil {
		return Quote{}, errors.New("change_percent is not a number")
	}
	q := Quote{
		Status:        StatusOK,
		Index:         e.Index,
		Value:         *e.Value,
		ChangePercent: *e.ChangePercent,
		Source:        e.Source,
	}
	if e.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, e.UpdatedAt)
		if err != nil {
			return Quote{}, fmt.Errorf("updated_at: %w", err)
		}
		q.UpdatedAt = t
	}
	return q, nil
}
