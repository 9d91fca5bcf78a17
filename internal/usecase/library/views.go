package library

import (
	"fmt"
	"sort"

	"github.com/its-jojoo/otterboard/internal/core"
)

// Tab names a derived view of the collection.
type Tab string

const (
	TabClipboard Tab = "clipboard"
	TabPinned    Tab = "pinned"
	TabCaptures  Tab = "captures"
)

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabClipboard, TabPinned, TabCaptures:
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

func (t Tab) includes(it core.Item) bool {
	switch t {
	case TabClipboard:
		return !it.IsPinned && it.Source() == core.SourceClipboard
	case TabPinned:
		return it.IsPinned
	case TabCaptures:
		return it.Type == core.TypeCapture
	}
	return false
}

// View filters the collection for tab and orders it newest first. Equal
// timestamps keep collection order.
func (m *Manager) View(tab Tab) []core.Item {
	m.mu.RLock()
	out := make([]core.Item, 0, len(m.items))
	for _, it := range m.items {
		if tab.includes(it) {
			out = append(out, it.Clone())
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// ClipboardView is the unpinned clipboard history.
func (m *Manager) ClipboardView() []core.Item { return m.View(TabClipboard) }

// PinnedView is every pinned item regardless of source.
func (m *Manager) PinnedView() []core.Item { return m.View(TabPinned) }

// CapturesView is every screen capture regardless of pin state.
func (m *Manager) CapturesView() []core.Item { return m.View(TabCaptures) }
