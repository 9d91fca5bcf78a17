package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/its-jojoo/otterboard/internal/core"
)

var ErrNotFound = errors.New("not found")

// Backend is a durable key-value store scoped to one user profile.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error) // ErrNotFound when absent
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	KeyResourceLibrary         = "resource-library"
	KeyClipboardPermission     = "clipboard-permission"
	KeyScreenCapturePermission = "screen-capture-permission"
)

// Permission names one of the persisted permission flags.
type Permission string

const (
	PermissionClipboard     Permission = KeyClipboardPermission
	PermissionScreenCapture Permission = KeyScreenCapturePermission
)

// Adapter persists the resource collection and permission flags on top of a
// Backend. It never returns errors: failures are logged and collapse to a
// no-op on write and to empty/false on read.
type Adapter struct {
	backend Backend
	log     *slog.Logger
}

func NewAdapter(backend Backend, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{backend: backend, log: log.With("component", "store")}
}

func (a *Adapter) SaveCollection(ctx context.Context, items []core.Item) {
	if items == nil {
		items = []core.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		a.log.Error("encode resource library", "error", err)
		return
	}
	a.put(ctx, KeyResourceLibrary, b)
}

func (a *Adapter) LoadCollection(ctx context.Context) []core.Item {
	b, ok := a.get(ctx, KeyResourceLibrary)
	if !ok {
		return []core.Item{}
	}
	var items []core.Item
	if err := json.Unmarshal(b, &items); err != nil {
		a.log.Error("decode resource library", "error", err)
		return []core.Item{}
	}
	if items == nil {
		items = []core.Item{}
	}
	return items
}

func (a *Adapter) ClearCollection(ctx context.Context) {
	if a.backend == nil {
		return
	}
	if err := a.backend.Delete(ctx, KeyResourceLibrary); err != nil && !errors.Is(err, ErrNotFound) {
		a.log.Error("clear resource library", "error", err)
	}
}

func (a *Adapter) SavePermission(ctx context.Context, p Permission, granted bool) {
	b, _ := json.Marshal(granted)
	a.put(ctx, string(p), b)
}

func (a *Adapter) LoadPermission(ctx context.Context, p Permission) bool {
	b, ok := a.get(ctx, string(p))
	if !ok {
		return false
	}
	var granted bool
	if err := json.Unmarshal(b, &granted); err != nil {
		a.log.Error("decode permission", "key", string(p), "error", err)
		return false
	}
	return granted
}

func (a *Adapter) Close() error {
	if a.backend == nil {
		return nil
	}
	return a.backend.Close()
}

func (a *Adapter) put(ctx context.Context, key string, b []byte) {
	if a.backend == nil {
		a.log.Warn("no backend, skipping write", "key", key)
		return
	}
	if err := a.backend.Put(ctx, key, b); err != nil {
		a.log.Error("write failed", "key", key, "error", err)
	}
}

func (a *Adapter) get(ctx context.Context, key string) ([]byte, bool) {
	if a.backend == nil {
		return nil, false
	}
	b, err := a.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Error("read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}
