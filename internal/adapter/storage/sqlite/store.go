package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/core"
)

// Store is the relational backing schema: users, their resource items and
// their preferences. It also exposes a key-value table so it can serve as a
// storage.Backend.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("open: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open: sql open: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: migrate: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: pragmas: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id       INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS resource_items (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id     INTEGER REFERENCES users(id) ON DELETE CASCADE,
  external_id TEXT NOT NULL UNIQUE,
  type        TEXT NOT NULL,
  content     TEXT NOT NULL,
  preview     TEXT,
  title       TEXT NOT NULL,
  timestamp   INTEGER NOT NULL,
  is_pinned   INTEGER NOT NULL DEFAULT 0,
  metadata    TEXT,
  position    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_resource_items_user_pos ON resource_items(user_id, position);
CREATE INDEX IF NOT EXISTS idx_resource_items_ts       ON resource_items(timestamp DESC);

CREATE TABLE IF NOT EXISTS user_preferences (
  id                       INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id                  INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  clipboard_monitoring     INTEGER NOT NULL DEFAULT 1,
  screen_capture_enabled   INTEGER NOT NULL DEFAULT 1,
  stylus_support           INTEGER NOT NULL DEFAULT 1,
  resource_library_visible INTEGER NOT NULL DEFAULT 1,
  settings                 TEXT
);

CREATE TABLE IF NOT EXISTS kv (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	return err
}

// EnsureUser returns the id for username, creating the row if needed.
func (s *Store) EnsureUser(ctx context.Context, username string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, errors.New("ensure user: empty username")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO users(username) VALUES(?)`, username); err != nil {
		return 0, fmt.Errorf("ensure user: insert: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username=?`, username).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure user: select: %w", err)
	}
	return id, nil
}

// ReplaceResources swaps the user's stored collection for items, keeping their order.
func (s *Store) ReplaceResources(ctx context.Context, userID int64, items []core.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace resources: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resource_items WHERE user_id=?`, userID); err != nil {
		return fmt.Errorf("replace resources: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertResourceSQL)
	if err != nil {
		return fmt.Errorf("replace resources: prepare: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		args, err := resourceArgs(userID, it, i)
		if err != nil {
			return fmt.Errorf("replace resources: %s: %w", it.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("replace resources: insert %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// PutResource stores one item at the head of the user's collection.
func (s *Store) PutResource(ctx context.Context, userID int64, it core.Item) error {
	var head sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(position) FROM resource_items WHERE user_id=?`, userID).Scan(&head); err != nil {
		return fmt.Errorf("put resource: head: %w", err)
	}
	pos := 0
	if head.Valid {
		pos = int(head.Int64) - 1
	}
	args, err := resourceArgs(userID, it, pos)
	if err != nil {
		return fmt.Errorf("put resource: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insertResourceSQL, args...); err != nil {
		return fmt.Errorf("put resource: insert: %w", err)
	}
	return nil
}

func (s *Store) ListResources(ctx context.Context, userID int64) ([]core.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT external_id, type, content, preview, title, timestamp, is_pinned, metadata
FROM resource_items
WHERE user_id=?
ORDER BY position ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	out := []core.Item{}
	for rows.Next() {
		var it core.Item
		var typ string
		var preview, meta sql.NullString
		var pinned int

		if err := rows.Scan(&it.ID, &typ, &it.Content, &preview, &it.Title, &it.Timestamp, &pinned, &meta); err != nil {
			return nil, fmt.Errorf("list resources: scan: %w", err)
		}
		it.Type = core.Type(typ)
		it.Preview = preview.String
		it.IsPinned = pinned == 1
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &it.Metadata); err != nil {
				return nil, fmt.Errorf("list resources: metadata %s: %w", it.ID, err)
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CountResources(ctx context.Context, userID int64) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM resource_items WHERE user_id=?`, userID)
	var n int
	return n, row.Scan(&n)
}

// Preferences mirror the per-user flags of the whiteboard shell.
type Preferences struct {
	ClipboardMonitoring    bool              `json:"clipboardMonitoring"`
	ScreenCaptureEnabled   bool              `json:"screenCaptureEnabled"`
	StylusSupport          bool              `json:"stylusSupport"`
	ResourceLibraryVisible bool              `json:"resourceLibraryVisible"`
	Settings               map[string]string `json:"settings,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ClipboardMonitoring:    true,
		ScreenCaptureEnabled:   true,
		StylusSupport:          true,
		ResourceLibraryVisible: true,
	}
}

func (s *Store) Preferences(ctx context.Context, userID int64) (Preferences, error) {
	var cm, sc, st, rv int
	var settings sql.NullString
	err := s.db.QueryRowContext(ctx, `
SELECT clipboard_monitoring, screen_capture_enabled, stylus_support, resource_library_visible, settings
FROM user_preferences WHERE user_id=?
`, userID).Scan(&cm, &sc, &st, &rv, &settings)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("preferences: %w", err)
	}
	p := Preferences{
		ClipboardMonitoring:    cm == 1,
		ScreenCaptureEnabled:   sc == 1,
		StylusSupport:          st == 1,
		ResourceLibraryVisible: rv == 1,
	}
	if settings.Valid && settings.String != "" {
		if err := json.Unmarshal([]byte(settings.String), &p.Settings); err != nil {
			return Preferences{}, fmt.Errorf("preferences: settings: %w", err)
		}
	}
	return p, nil
}

func (s *Store) SavePreferences(ctx context.Context, userID int64, p Preferences) error {
	var settings any
	if len(p.Settings) > 0 {
		b, err := json.Marshal(p.Settings)
		if err != nil {
			return fmt.Errorf("save preferences: settings: %w", err)
		}
		settings = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_preferences(user_id, clipboard_monitoring, screen_capture_enabled, stylus_support, resource_library_visible, settings)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  clipboard_monitoring=excluded.clipboard_monitoring,
  screen_capture_enabled=excluded.screen_capture_enabled,
  stylus_support=excluded.stylus_support,
  resource_library_visible=excluded.resource_library_visible,
  settings=excluded.settings
`, userID, boolToInt(p.ClipboardMonitoring), boolToInt(p.ScreenCaptureEnabled),
		boolToInt(p.StylusSupport), boolToInt(p.ResourceLibraryVisible), settings)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Get, Put and Delete implement storage.Backend over the kv table.

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return v, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key=?`, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const insertResourceSQL = `
INSERT INTO resource_items(user_id, external_id, type, content, preview, title, timestamp, is_pinned, metadata, position)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func resourceArgs(userID int64, it core.Item, pos int) ([]any, error) {
	if it.ID == "" {
		return nil, errors.New("item ID required")
	}
	meta, err := json.Marshal(it.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	var preview any
	if it.Preview != "" {
		preview = it.Preview
	}
	return []any{userID, it.ID, string(it.Type), it.Content, preview, it.Title,
		it.Timestamp, boolToInt(it.IsPinned), string(meta), pos}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
