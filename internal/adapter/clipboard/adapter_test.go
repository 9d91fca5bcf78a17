package clipboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/memory"
	"github.com/its-jojoo/otterboard/internal/core"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeHost struct {
	mu        sync.Mutex
	available bool
	entries   []Entry
	text      string
	readErr   error
	reads     int
}

func (f *fakeHost) Available() bool { return f.available }

func (f *fakeHost) Read(ctx context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]Entry(nil), f.entries...), nil
}

func (f *fakeHost) ReadText(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.text, nil
}

func (f *fakeHost) set(entries ...Entry) {
	f.mu.Lock()
	f.entries = entries
	f.mu.Unlock()
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestAdapter(host Host) (*Adapter, *storage.Adapter) {
	perms := storage.NewAdapter(memory.New(), quiet)
	return NewAdapter(host, perms, quiet), perms
}

func granted(t *testing.T, host *fakeHost) *Adapter {
	t.Helper()
	a, _ := newTestAdapter(host)
	if !a.RequestPermission(context.Background()) {
		t.Fatalf("expected permission")
	}
	return a
}

func TestRead_PrefersImage(t *testing.T) {
	host := &fakeHost{available: true}
	a := granted(t, host)
	host.set(Entry{MIME: MIMEPlain, Data: []byte("hello")}, Entry{MIME: "image/png", Data: pngData(t, 4, 3)})

	it := a.Read(context.Background())
	if it == nil || it.Type != core.TypeImage {
		t.Fatalf("expected image item, got %+v", it)
	}
	if it.IsPinned || it.Source() != core.SourceClipboard || it.Title != "Clipboard Image" {
		t.Fatalf("unexpected image item %+v", it)
	}
	if it.Metadata.Image == nil || it.Metadata.Image.Width != 4 || it.Metadata.Image.Height != 3 || it.Metadata.Image.MimeType != "image/png" {
		t.Fatalf("unexpected image metadata %+v", it.Metadata.Image)
	}
	if it.Preview != it.Content {
		t.Fatalf("expected preview to mirror content")
	}
}

func TestRead_TextThenHTML(t *testing.T) {
	host := &fakeHost{available: true}
	a := granted(t, host)

	host.set(Entry{MIME: MIMEHTML, Data: []byte("<b>x</b>")}, Entry{MIME: MIMEPlain, Data: []byte("function f() { }")})
	it := a.Read(context.Background())
	if it == nil || it.Type != core.TypeCode || it.Title != "Code Snippet" {
		t.Fatalf("expected code item, got %+v", it)
	}

	host.set(Entry{MIME: MIMEHTML, Data: []byte("<b>x</b>")})
	it = a.Read(context.Background())
	if it == nil || it.Type != core.TypeHTML || it.Content != "<b>x</b>" {
		t.Fatalf("expected html item, got %+v", it)
	}
}

func TestRead_FallsBackToReadText(t *testing.T) {
	host := &fakeHost{available: true, text: "hello world"}
	a := granted(t, host)

	it := a.Read(context.Background())
	if it == nil || it.Type != core.TypeText || it.Content != "hello world" {
		t.Fatalf("expected text from legacy path, got %+v", it)
	}

	host.text = "   "
	if it := a.Read(context.Background()); it != nil {
		t.Fatalf("expected nil for blank clipboard, got %+v", it)
	}
}

func TestRead_FailuresYieldNil(t *testing.T) {
	ctx := context.Background()

	a, _ := newTestAdapter(&fakeHost{available: false})
	if a.Read(ctx) != nil {
		t.Fatalf("expected nil without clipboard")
	}

	host := &fakeHost{available: true, entries: []Entry{{MIME: MIMEPlain, Data: []byte("x")}}}
	a, _ = newTestAdapter(host)
	if a.Read(ctx) != nil {
		t.Fatalf("expected nil without permission")
	}

	a = granted(t, host)
	host.readErr = errors.New("denied")
	if a.Read(ctx) != nil {
		t.Fatalf("expected nil on read error")
	}
}

func TestPermission_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	host := &fakeHost{available: true}
	a, perms := newTestAdapter(host)

	if a.RestorePermission(ctx) {
		t.Fatalf("nothing stored yet")
	}
	a.RequestPermission(ctx)
	if !perms.LoadPermission(ctx, storage.PermissionClipboard) {
		t.Fatalf("expected persisted permission")
	}

	next := NewAdapter(host, perms, quiet)
	if !next.RestorePermission(ctx) || !next.HasPermission() {
		t.Fatalf("expected permission restored on start")
	}

	host.readErr = errors.New("revoked")
	again := NewAdapter(host, perms, quiet)
	if again.RestorePermission(ctx) {
		t.Fatalf("expected re-check to fail once revoked")
	}
	if perms.LoadPermission(ctx, storage.PermissionClipboard) {
		t.Fatalf("expected revoked permission to be persisted")
	}
}

func TestFromPaste(t *testing.T) {
	a, _ := newTestAdapter(&fakeHost{})

	img := a.FromPaste(PasteEvent{
		Files: []File{{Name: "shot.png", MIME: "image/png", Data: pngData(t, 2, 2)}},
		Data:  map[string]string{MIMEPlain: "ignored"},
	})
	if img == nil || img.Type != core.TypeImage || img.IsPinned || img.Source() != core.SourceClipboard || img.Title != "Pasted Image" {
		t.Fatalf("unexpected pasted image %+v", img)
	}

	code := a.FromPaste(PasteEvent{Files: []File{{Name: "a.pdf", MIME: "application/pdf"}}, Data: map[string]string{MIMEPlain: "function x() { return 1 }"}})
	if code == nil || code.Type != core.TypeCode {
		t.Fatalf("expected code, got %+v", code)
	}
	if code.Metadata.Code == nil || code.Metadata.Code.Language != "javascript" {
		t.Fatalf("expected javascript tag, got %+v", code.Metadata)
	}

	text := a.FromPaste(PasteEvent{Data: map[string]string{MIMEPlain: "hello world"}})
	if text == nil || text.Type != core.TypeText {
		t.Fatalf("expected text, got %+v", text)
	}

	html := a.FromPaste(PasteEvent{Data: map[string]string{MIMEHTML: "<i>x</i>"}})
	if html == nil || html.Type != core.TypeHTML {
		t.Fatalf("expected html, got %+v", html)
	}

	if a.FromPaste(PasteEvent{}) != nil {
		t.Fatalf("expected nil for empty event")
	}
}

type chanSource struct {
	ch chan PasteEvent
}

func (s chanSource) Events(ctx context.Context) (<-chan PasteEvent, error) {
	out := make(chan PasteEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.ch:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func TestListen_DeliversAndStops(t *testing.T) {
	a, _ := newTestAdapter(&fakeHost{})
	src := chanSource{ch: make(chan PasteEvent)}

	got := make(chan *core.Item, 4)
	stop, err := a.Listen(context.Background(), src, func(it *core.Item) { got <- it })
	if err != nil {
		t.Fatal(err)
	}

	src.ch <- PasteEvent{Data: map[string]string{MIMEPlain: "hi"}}
	src.ch <- PasteEvent{}

	first := <-got
	if first == nil || first.Content != "hi" {
		t.Fatalf("unexpected first item %+v", first)
	}
	if second := <-got; second != nil {
		t.Fatalf("expected nil for empty paste, got %+v", second)
	}

	stop()
	stop()

	select {
	case src.ch <- PasteEvent{Data: map[string]string{MIMEPlain: "late"}}:
		t.Fatalf("listener still consuming after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListen_PollSourceNeedsPermission(t *testing.T) {
	host := &fakeHost{available: true}
	host.set(Entry{MIME: MIMEPlain, Data: []byte("before")})
	a, _ := newTestAdapter(host)

	got := make(chan *core.Item, 4)
	stop, err := a.Listen(context.Background(), NewPollSource(host, 5*time.Millisecond), func(it *core.Item) { got <- it })
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	host.set(Entry{MIME: MIMEPlain, Data: []byte("secret")})
	select {
	case it := <-got:
		t.Fatalf("clipboard delivered without permission: %+v", it)
	case <-time.After(80 * time.Millisecond):
	}

	if !a.RequestPermission(context.Background()) {
		t.Fatalf("expected permission")
	}
	host.set(Entry{MIME: MIMEPlain, Data: []byte("allowed")})
	select {
	case it := <-got:
		if it == nil || it.Content != "allowed" {
			t.Fatalf("unexpected item %+v", it)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected delivery once permission is held")
	}
}
