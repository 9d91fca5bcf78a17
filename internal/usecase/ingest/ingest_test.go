package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/its-jojoo/otterboard/internal/adapter/capture"
	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/memory"
	"github.com/its-jojoo/otterboard/internal/core"
	"github.com/its-jojoo/otterboard/internal/usecase/library"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newLibrary() *library.Manager {
	var n int
	base := time.UnixMilli(1_700_000_000_000)
	return library.New(
		storage.NewAdapter(memory.New(), quiet),
		library.WithLogger(quiet),
		library.WithClock(func() time.Time { n++; return base.Add(time.Duration(n) * time.Second) }),
	)
}

func clip(content string) *core.Item {
	typ := core.ClassifyText(content)
	return &core.Item{
		Type:     typ,
		Content:  content,
		Title:    core.TitleFor(typ, false),
		Metadata: core.Metadata{Source: core.SourceClipboard},
	}
}

func TestAccept_IgnoresNil(t *testing.T) {
	svc := New(newLibrary(), nil, Config{}, quiet)
	_, saved, err := svc.Accept(context.Background(), nil)
	if err != nil || saved {
		t.Fatalf("expected nil item to be skipped")
	}
}

func TestAccept_PrivacyIgnore(t *testing.T) {
	lib := newLibrary()
	pf, err := core.NewPrivacyFilter([]string{"token="}, false)
	if err != nil {
		t.Fatal(err)
	}
	svc := New(lib, pf, Config{}, quiet)

	_, saved, err := svc.Accept(context.Background(), clip("my token=abc"))
	if err != nil {
		t.Fatal(err)
	}
	if saved || lib.Len() != 0 {
		t.Fatalf("expected ignored by privacy filter")
	}
}

func TestAccept_DedupeConsecutive(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{DedupeConsecutive: true}, quiet)
	ctx := context.Background()

	_, saved1, _ := svc.Accept(ctx, clip("hello  world"))
	_, saved2, _ := svc.Accept(ctx, clip("hello world"))
	_, saved3, _ := svc.Accept(ctx, clip("something else"))
	_, saved4, _ := svc.Accept(ctx, clip("hello world"))

	if !saved1 || saved2 || !saved3 || !saved4 {
		t.Fatalf("unexpected dedupe results %v %v %v %v", saved1, saved2, saved3, saved4)
	}
	if lib.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", lib.Len())
	}
}

func TestAccept_DedupeDisabled(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{}, quiet)
	ctx := context.Background()

	svc.Accept(ctx, clip("same"))
	svc.Accept(ctx, clip("same"))
	if lib.Len() != 2 {
		t.Fatalf("expected both copies kept, got %d", lib.Len())
	}
}

func TestRetention_EvictsOldestNonPinned(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{MaxItems: 2}, quiet)
	ctx := context.Background()

	one, _, err := svc.Accept(ctx, clip("one"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Accept(ctx, clip("two")); err != nil {
		t.Fatal(err)
	}
	if !lib.TogglePin(ctx, one.ID) {
		t.Fatalf("expected pin of oldest")
	}

	if _, saved, err := svc.Accept(ctx, clip("three")); err != nil || !saved {
		t.Fatalf("expected saved three")
	}

	items := lib.All()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after retention, got %d", len(items))
	}
	got := map[string]bool{}
	for _, it := range items {
		got[it.Content] = true
	}
	if !got["one"] || !got["three"] || got["two"] {
		t.Fatalf("expected pinned 'one' and newest 'three' to remain, got %v", got)
	}
}

func TestRetention_NeverEvictsPinned(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{MaxItems: 1}, quiet)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		it := clip(fmt.Sprintf("pinned %d", i))
		it.IsPinned = true
		if _, _, err := svc.Accept(ctx, it); err != nil {
			t.Fatal(err)
		}
	}
	if lib.Len() != 3 {
		t.Fatalf("pinned items must survive retention, got %d", lib.Len())
	}
}

type stubReader struct{ it *core.Item }

func (r stubReader) Read(ctx context.Context) *core.Item { return r.it }

func TestReadClipboard(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{}, quiet)

	got, saved, err := svc.ReadClipboard(context.Background(), stubReader{it: clip("function f() { }")})
	if err != nil || !saved || got.Type != core.TypeCode {
		t.Fatalf("unexpected read result %+v %v %v", got, saved, err)
	}
	if _, saved, _ := svc.ReadClipboard(context.Background(), stubReader{}); saved {
		t.Fatalf("nil read must not be stored")
	}
}

type stubCapturer struct{ it *core.Item }

func (c stubCapturer) CaptureWithOptions(ctx context.Context, sourceID string, opts capture.Options) *core.Item {
	if c.it == nil {
		return nil
	}
	it := *c.it
	it.IsPinned = opts.AddToLibrary
	return &it
}

type recordingTarget struct {
	placed []core.Item
	err    error
}

func (r *recordingTarget) Place(ctx context.Context, it core.Item, at library.Point) error {
	r.placed = append(r.placed, it)
	return r.err
}

func frame() *core.Item {
	return &core.Item{
		Type:     core.TypeCapture,
		Content:  "data:image/png;base64,AAAA",
		Title:    "Screen Capture",
		IsPinned: true,
		Metadata: core.Metadata{Source: core.SourceCapture, Image: &core.ImageMeta{Width: 1, Height: 1, MimeType: "image/png"}},
	}
}

func TestCapture_Options(t *testing.T) {
	lib := newLibrary()
	svc := New(lib, nil, Config{}, quiet)
	ctx := context.Background()
	target := &recordingTarget{}

	got, saved, err := svc.Capture(ctx, stubCapturer{it: frame()}, "screen", capture.Options{AddToLibrary: true, AddToCanvas: true}, target)
	if err != nil || !saved || !got.IsPinned {
		t.Fatalf("unexpected capture %+v %v %v", got, saved, err)
	}
	if len(target.placed) != 1 || target.placed[0].ID != got.ID {
		t.Fatalf("expected capture placed on canvas")
	}
	if len(lib.CapturesView()) != 1 || len(lib.PinnedView()) != 1 {
		t.Fatalf("expected capture in captures and pinned views")
	}

	got, _, _ = svc.Capture(ctx, stubCapturer{it: frame()}, "tab", capture.Options{}, target)
	if got.IsPinned || len(target.placed) != 1 {
		t.Fatalf("expected unpinned capture not placed on canvas")
	}
	if len(lib.ClipboardView()) != 0 {
		t.Fatalf("captures never appear in the clipboard view")
	}

	target.err = errors.New("canvas gone")
	if _, saved, err := svc.Capture(ctx, stubCapturer{it: frame()}, "", capture.Options{AddToCanvas: true}, target); !saved || err == nil {
		t.Fatalf("expected stored capture with placement error")
	}

	if _, saved, err := svc.Capture(ctx, stubCapturer{}, "", capture.Options{}, target); saved || err != nil {
		t.Fatalf("failed capture stores nothing")
	}
}
