// Package ingest is the path from clipboard and capture adapters into the
// library: privacy filtering, consecutive de-duplication and retention.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/its-jojoo/otterboard/internal/adapter/capture"
	"github.com/its-jojoo/otterboard/internal/adapter/clipboard"
	"github.com/its-jojoo/otterboard/internal/core"
	"github.com/its-jojoo/otterboard/internal/usecase/library"
)

type Config struct {
	MaxItems          int
	DedupeConsecutive bool
}

// Library is the part of library.Manager the pipeline writes to.
type Library interface {
	Add(ctx context.Context, it core.Item) (core.Item, error)
	Remove(ctx context.Context, id string) bool
	All() []core.Item
}

type ClipboardReader interface {
	Read(ctx context.Context) *core.Item
}

type Capturer interface {
	CaptureWithOptions(ctx context.Context, sourceID string, opts capture.Options) *core.Item
}

var (
	_ Library         = (*library.Manager)(nil)
	_ Capturer        = (*capture.Adapter)(nil)
	_ ClipboardReader = (*clipboard.Adapter)(nil)
)

type Service struct {
	lib     Library
	privacy *core.PrivacyFilter
	cfg     Config
	log     *slog.Logger

	mu              sync.Mutex
	lastFingerprint string
}

func New(lib Library, privacy *core.PrivacyFilter, cfg Config, log *slog.Logger) *Service {
	if cfg.MaxItems < 0 {
		cfg.MaxItems = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{lib: lib, privacy: privacy, cfg: cfg, log: log.With("component", "ingest")}
}

// Accept adds it to the library unless it is nil, filtered or a repeat of
// the previous clipboard item. The bool reports whether it was stored.
func (s *Service) Accept(ctx context.Context, it *core.Item) (core.Item, bool, error) {
	if it == nil {
		return core.Item{}, false, nil
	}
	if s.privacy != nil && s.privacy.ShouldIgnore(*it) {
		s.log.Debug("ignored by privacy filter", "type", it.Type)
		return core.Item{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fp := ""
	if it.Source() == core.SourceClipboard {
		fp = core.ItemFingerprint(*it)
		if s.cfg.DedupeConsecutive && fp != "" && fp == s.lastFingerprint {
			return core.Item{}, false, nil
		}
	}

	saved, err := s.lib.Add(ctx, *it)
	if err != nil {
		return core.Item{}, false, fmt.Errorf("ingest: %w", err)
	}
	if fp != "" {
		s.lastFingerprint = fp
	}

	s.enforceRetention(ctx)
	return saved, true, nil
}

// enforceRetention evicts the oldest unpinned items once the collection
// grows past MaxItems. Pinned items are never evicted.
func (s *Service) enforceRetention(ctx context.Context) {
	if s.cfg.MaxItems == 0 {
		return
	}
	items := s.lib.All()
	over := len(items) - s.cfg.MaxItems
	for i := len(items) - 1; i >= 0 && over > 0; i-- {
		if items[i].IsPinned {
			continue
		}
		if s.lib.Remove(ctx, items[i].ID) {
			s.log.Debug("evicted", "id", items[i].ID)
			over--
		}
	}
}

// ReadClipboard performs an active clipboard read and accepts the result.
func (s *Service) ReadClipboard(ctx context.Context, r ClipboardReader) (core.Item, bool, error) {
	return s.Accept(ctx, r.Read(ctx))
}

// Capture grabs a frame, stores it and, when asked, places it on target at
// the origin.
func (s *Service) Capture(ctx context.Context, c Capturer, sourceID string, opts capture.Options, target library.DropTarget) (core.Item, bool, error) {
	it := c.CaptureWithOptions(ctx, sourceID, opts)
	if it == nil {
		return core.Item{}, false, nil
	}
	saved, ok, err := s.Accept(ctx, it)
	if err != nil || !ok {
		return saved, ok, err
	}
	if opts.AddToCanvas && target != nil {
		if err := target.Place(ctx, saved, library.Point{}); err != nil {
			return saved, true, fmt.Errorf("ingest: place on canvas: %w", err)
		}
	}
	return saved, true, nil
}
