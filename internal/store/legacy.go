package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// LegacyWord is a row from the single-direction schema, where progression
// tracked recall only and the favorite flag was named "my".
type LegacyWord struct {
	ID          int
	JP          string
	EN          string
	Progression int
	Favorite    bool

	// NoProgression is set when the progression column is NULL.
	NoProgression bool
}

// LegacyReader reads words(id, jp, en, progression, my) from an older
// database. It never writes to it.
type LegacyReader struct {
	db *sql.DB
}

// OpenLegacy opens a legacy database read-only.
func OpenLegacy(path string) (*LegacyReader, error) {
	dsn, err := fileDSN(path, "mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	return &LegacyReader{db: db}, nil
}

// fileDSN builds a SQLite URI for path with its reserved characters escaped.
func fileDSN(path, query string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return (&url.URL{Scheme: "file", Path: abs, RawQuery: query}).String(), nil
}

// NewLegacyReader wraps an existing handle.
func NewLegacyReader(db *sql.DB) *LegacyReader {
	return &LegacyReader{db: db}
}

// Close closes the legacy database.
func (l *LegacyReader) Close() error {
	return l.db.Close()
}

// ReadAll pages through every legacy row ordered by id.
func (l *LegacyReader) ReadAll(ctx context.Context, pageSize int) ([]LegacyWord, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		all   []LegacyWord
		after = -1
	)
	for {
		query, args := entsql.Dialect(dialect.SQLite).
			Select("id", "jp", "en", "progression", "my").
			From(entsql.Table("words")).
			Where(entsql.GT("id", after)).
			OrderBy(entsql.Asc("id")).
			Limit(pageSize).
			Query()

		page, err := l.readPage(ctx, query, args)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}

func (l *LegacyReader) readPage(ctx context.Context, query string, args []any) ([]LegacyWord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query legacy words: %w", err)
	}
	defer rows.Close()

	var page []LegacyWord
	for rows.Next() {
		var (
			w           LegacyWord
			jp, en      sql.NullString
			progression sql.NullInt64
			my          sql.NullBool
		)
		if err := rows.Scan(&w.ID, &jp, &en, &progression, &my); err != nil {
			return nil, fmt.Errorf("scan legacy word: %w", err)
		}
		w.JP = jp.String
		w.EN = en.String
		w.Progression = int(progression.Int64)
		w.NoProgression = !progression.Valid
		w.Favorite = my.Valid && my.Bool
		page = append(page, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy words: %w", err)
	}
	return page, nil
}
