package database

import (
	"briefly/internal/domain"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("not found")

// AddHistory stores entry and returns its ID. CreatedAt defaults to now.
func (d *Database) AddHistory(ctx context.Context, entry domain.HistoryEntry) (int64, error) {
	entry.URL = strings.TrimSpace(entry.URL)
	if entry.URL == "" {
		return 0, errors.New("URL is empty")
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `insert into history (url, url_type, style, length, summary, word_count, created_at)
values (?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		entry.URL,
		string(entry.Kind),
		string(entry.Style),
		entry.TargetLength,
		entry.Summary,
		entry.WordCount,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert ID: %w", err)
	}

	return id, nil
}

// ListHistory returns up to limit entries, newest first.
func (d *Database) ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `select id, url, url_type, style, length, summary, word_count, created_at
from history order by created_at desc, id desc limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListHistory")
		}
	}()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

func (d *Database) GetHistory(ctx context.Context, id int64) (domain.HistoryEntry, error) {
	query := `select id, url, url_type, style, length, summary, word_count, created_at
from history where id = ?`

	entry, err := scanHistory(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryEntry{}, fmt.Errorf("get history (id = %d): %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	return entry, nil
}

// CountHistory returns the number of stored entries.
func (d *Database) CountHistory(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "select count(*) from history").Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (domain.HistoryEntry, error) {
	var (
		e     domain.HistoryEntry
		kind  string
		style string
	)

	err := row.Scan(&e.ID, &e.URL, &kind, &style, &e.TargetLength, &e.Summary, &e.WordCount, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryEntry{}, err
	}
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("scan row: %w", err)
	}

	e.Kind = domain.Kind(kind)
	e.Style = domain.Style(style)
	e.CreatedAt = e.CreatedAt.UTC()

	return e, nil
}
