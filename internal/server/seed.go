package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/core"
)

// Seeder is the part of sqlite.Store needed to populate a demo account.
type Seeder interface {
	CountResources(ctx context.Context, userID int64) (int, error)
	ReplaceResources(ctx context.Context, userID int64, items []core.Item) error
	SavePreferences(ctx context.Context, userID int64, p sqlite.Preferences) error
}

// DemoItems returns a small mixed collection, newest first, relative to now.
func DemoItems(now time.Time) []core.Item {
	ago := func(d time.Duration) int64 { return core.Millis(now.Add(-d)) }
	return []core.Item{
		{
			ID:        uuid.NewString(),
			Type:      core.TypeText,
			Title:     "Text Snippet",
			Content:   "Design guidelines for infinite canvas applications should consider both desktop and mobile interfaces.",
			Timestamp: ago(2 * time.Minute),
			Metadata:  core.Metadata{Source: core.SourceClipboard},
		},
		{
			ID:        uuid.NewString(),
			Type:      core.TypeHTML,
			Title:     "HTML Content",
			Content:   "<ul><li>clipboard</li><li>captures</li><li>widgets</li></ul>",
			Timestamp: ago(time.Hour),
			Metadata:  core.Metadata{Source: core.SourceClipboard},
		},
		{
			ID:        uuid.NewString(),
			Type:      core.TypeCode,
			Title:     "Code Snippet",
			Content:   "import { Board } from './board'\n\nexport default function App() {\n  return <Board />\n}",
			Timestamp: ago(48 * time.Hour),
			IsPinned:  true,
			Metadata:  core.Metadata{Source: core.SourceClipboard, Code: &core.CodeMeta{Language: "javascript"}},
		},
	}
}

// Seed fills an empty account with DemoItems and default preferences. It
// returns the number of items written; accounts with items are left alone.
func Seed(ctx context.Context, st Seeder, userID int64, now time.Time) (int, error) {
	n, err := st.CountResources(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	items := DemoItems(now)
	if err := st.ReplaceResources(ctx, userID, items); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	prefs := sqlite.DefaultPreferences()
	prefs.Settings = map[string]string{
		"defaultView": "clipboard",
		"autoSave":    "true",
		"theme":       "light",
	}
	if err := st.SavePreferences(ctx, userID, prefs); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return len(items), nil
}
