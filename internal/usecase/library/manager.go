// Package library owns the resource collection: the single point of mutation
// and persistence, plus the derived clipboard, pinned and captures views.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/core"
)

var ErrDuplicateID = errors.New("duplicate item id")

// Persister is the part of storage.Adapter the manager writes through.
type Persister interface {
	SaveCollection(ctx context.Context, items []core.Item)
	LoadCollection(ctx context.Context) []core.Item
}

var _ Persister = (*storage.Adapter)(nil)

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager holds the authoritative in-memory collection, newest first. Every
// successful mutation writes the full collection back to the store.
type Manager struct {
	mu    sync.RWMutex
	store Persister
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	items []core.Item
	dirty bool // mutated since Load
}

func New(store Persister, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
		newID: uuid.NewString,
		items: []core.Item{},
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With("component", "library")
	return m
}

// Load replaces the in-memory collection with what the store holds. Items
// that fail validation or repeat an id are dropped with a warning.
func (m *Manager) Load(ctx context.Context) int {
	loaded := m.store.LoadCollection(ctx)

	seen := make(map[string]struct{}, len(loaded))
	items := make([]core.Item, 0, len(loaded))
	for _, it := range loaded {
		if err := core.Validate(it); err != nil {
			m.log.Warn("dropping stored item", "id", it.ID, "error", err)
			continue
		}
		if _, dup := seen[it.ID]; dup {
			m.log.Warn("dropping duplicate stored item", "id", it.ID)
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}

	m.mu.Lock()
	m.items = items
	m.dirty = false
	m.mu.Unlock()

	m.log.Debug("loaded collection", "items", len(items))
	return len(items)
}

// Close flushes the collection one last time if it changed since Load, so
// an untouched session never overwrites what is stored.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return
	}
	m.store.SaveCollection(ctx, m.snapshotLocked())
}

// Add prepends it to the collection. A missing id or timestamp is filled in.
func (m *Manager) Add(ctx context.Context, it core.Item) (core.Item, error) {
	it = it.Clone()
	if it.ID == "" {
		it.ID = m.newID()
	}
	if it.Timestamp == 0 {
		it.Timestamp = core.Millis(m.now())
	}
	if err := core.Validate(it); err != nil {
		return core.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(it.ID) >= 0 {
		return core.Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
	}
	m.items = append([]core.Item{it}, m.items...)
	m.persistLocked(ctx)
	return it.Clone(), nil
}

// Remove deletes the item with id. It reports whether anything was removed.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return false
	}
	m.items = append(m.items[:i:i], m.items[i+1:]...)
	m.persistLocked(ctx)
	return true
}

// TogglePin flips IsPinned on the item with id.
func (m *Manager) TogglePin(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return false
	}
	m.items[i].IsPinned = !m.items[i].IsPinned
	m.persistLocked(ctx)
	return true
}

// Patch lists the fields Update may change. Nil fields are left alone.
// Id, type, content and timestamp are fixed at creation.
type Patch struct {
	Title    *string
	Preview  *string
	IsPinned *bool
	Metadata *core.Metadata
}

// Update merges p into the item with id.
func (m *Manager) Update(ctx context.Context, id string, p Patch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	next := m.items[i].Clone()
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Preview != nil {
		next.Preview = *p.Preview
	}
	if p.IsPinned != nil {
		next.IsPinned = *p.IsPinned
	}
	if p.Metadata != nil {
		next.Metadata = p.Metadata.Clone()
	}
	if err := core.Validate(next); err != nil {
		return false, err
	}
	m.items[i] = next
	m.persistLocked(ctx)
	return true, nil
}

// ClearTransient removes every unpinned item and returns how many went.
func (m *Manager) ClearTransient(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]core.Item, 0, len(m.items))
	for _, it := range m.items {
		if it.IsPinned {
			kept = append(kept, it)
		}
	}
	removed := len(m.items) - len(kept)
	m.items = kept
	m.persistLocked(ctx)
	return removed
}

// Get returns a copy of the item with id.
func (m *Manager) Get(id string) (core.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexLocked(id)
	if i < 0 {
		return core.Item{}, false
	}
	return m.items[i].Clone(), true
}

// All returns a copy of the collection in storage order (newest insert first).
func (m *Manager) All() []core.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Manager) indexLocked(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshotLocked() []core.Item {
	out := make([]core.Item, len(m.items))
	for i, it := range m.items {
		out[i] = it.Clone()
	}
	return out
}

func (m *Manager) persistLocked(ctx context.Context) {
	m.dirty = true
	m.store.SaveCollection(ctx, m.snapshotLocked())
}
