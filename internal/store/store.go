// Package store keeps captured exchanges in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/migrations"
)

// ErrNotFound is returned when no capture matches an ID
var ErrNotFound = errors.New("capture not found")

// ErrAmbiguous is returned when an ID prefix matches several captures
var ErrAmbiguous = errors.New("capture ID prefix is ambiguous")

// timeLayout sorts lexically in chronological order
const timeLayout = "2006-01-02 15:04:05.000000000"

const selectColumns = `
	SELECT id, captured_at, source, method, url, status, duration_ms, request, response
	FROM captures
`

type Manager struct {
	db *sql.DB
}

// NewManager opens (and creates if needed) the capture database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to capture database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save inserts ex, assigning a new ID and timestamp when they are empty
func (m *Manager) Save(ex *capture.Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CapturedAt.IsZero() {
		ex.CapturedAt = time.Now()
	}

	_, err := m.db.Exec(`
		INSERT INTO captures (
			id, captured_at, source, method, url, status, duration_ms, request, response
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ex.ID,
		ex.CapturedAt.UTC().Format(timeLayout),
		string(ex.Source),
		ex.Method,
		ex.URL,
		ex.Status,
		ex.Duration.Milliseconds(),
		ex.Request,
		ex.Response,
	)
	if err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}
	return nil
}

// Get loads a capture by full ID or by a unique ID prefix
func (m *Manager) Get(id string) (capture.Exchange, error) {
	if id == "" {
		return capture.Exchange{}, ErrNotFound
	}

	rows, err := m.db.Query(selectColumns+` WHERE id LIKE ? || '%' ORDER BY captured_at DESC LIMIT 2`, id)
	if err != nil {
		return capture.Exchange{}, fmt.Errorf("failed to load capture: %w", err)
	}
	defer rows.Close()

	found, err := scanExchanges(rows)
	if err != nil {
		return capture.Exchange{}, err
	}

	switch len(found) {
	case 0:
		return capture.Exchange{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	}

	for _, ex := range found {
		if ex.ID == id {
			return ex, nil
		}
	}
	return capture.Exchange{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
}

// List returns captures newest first. source filters when non-empty and
// limit caps the result when positive.
func (m *Manager) List(source capture.Source, limit int) ([]capture.Exchange, error) {
	query := selectColumns
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY captured_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Find fuzzy-matches pattern against "METHOD URL" of every capture and
// returns the hits best first
func (m *Manager) Find(pattern string, limit int) ([]capture.Exchange, error) {
	all, err := m.List("", 0)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		return all, nil
	}

	titles := make([]string, len(all))
	for i, ex := range all {
		titles[i] = ex.Method + " " + ex.URL
	}

	matches := fuzzy.Find(pattern, titles)
	result := make([]capture.Exchange, 0, len(matches))
	for _, match := range matches {
		result = append(result, all[match.Index])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Delete removes one capture by full ID
func (m *Manager) Delete(id string) error {
	res, err := m.db.Exec("DELETE FROM captures WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every capture
func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM captures"); err != nil {
		return fmt.Errorf("failed to clear captures: %w", err)
	}
	return nil
}

// Trim keeps only the newest keep captures and reports how many were removed
func (m *Manager) Trim(keep int) (int64, error) {
	res, err := m.db.Exec(`
		DELETE FROM captures WHERE id NOT IN (
			SELECT id FROM captures ORDER BY captured_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim captures: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM captures").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get capture count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func scanExchanges(rows *sql.Rows) ([]capture.Exchange, error) {
	var exchanges []capture.Exchange

	for rows.Next() {
		var ex capture.Exchange
		var capturedAt string
		var source string
		var durationMs int64

		err := rows.Scan(
			&ex.ID,
			&capturedAt,
			&source,
			&ex.Method,
			&ex.URL,
			&ex.Status,
			&durationMs,
			&ex.Request,
			&ex.Response,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}

		parsed, err := time.ParseInLocation(timeLayout, capturedAt, time.UTC)
		if err != nil {
			parsed = time.Time{}
		}
		ex.CapturedAt = parsed.Local()
		ex.Source = capture.Source(source)
		ex.Duration = time.Duration(durationMs) * time.Millisecond

		exchanges = append(exchanges, ex)
	}

	return exchanges, rows.Err()
}
