package clipboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/core"
)

const (
	MIMEPlain = "text/plain"
	MIMEHTML  = "text/html"
)

// rasterMIMEs gate the image branch of an active read.
var rasterMIMEs = []string{"image/png", "image/jpeg", "image/gif"}

// PermissionStore persists the clipboard permission flag.
type PermissionStore interface {
	SavePermission(ctx context.Context, p storage.Permission, granted bool)
	LoadPermission(ctx context.Context, p storage.Permission) bool
}

// Adapter turns host clipboard content into library items. It never returns
// errors: anything that goes wrong is logged and yields nil.
type Adapter struct {
	host  Host
	perms PermissionStore
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	mu            sync.RWMutex
	hasPermission bool
}

type Option func(*Adapter)

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(a *Adapter) { a.newID = gen }
}

func NewAdapter(host Host, perms PermissionStore, log *slog.Logger, opts ...Option) *Adapter {
	if host == nil {
		host = UnsupportedHost{}
	}
	if log == nil {
		log = slog.Default()
	}
	a := &Adapter{
		host:  host,
		perms: perms,
		log:   log.With("component", "clipboard"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Adapter) Supported() bool { return a.host.Available() }

func (a *Adapter) HasPermission() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hasPermission
}

// RequestPermission probes the clipboard with a read and records the outcome.
func (a *Adapter) RequestPermission(ctx context.Context) bool {
	granted := false
	if a.host.Available() {
		if _, err := a.host.Read(ctx); err != nil {
			a.log.Warn("clipboard permission request failed", "error", err)
		} else {
			granted = true
		}
	} else {
		a.log.Warn("clipboard permission request failed", "error", ErrUnsupported)
	}

	a.mu.Lock()
	a.hasPermission = granted
	a.mu.Unlock()

	if a.perms != nil {
		a.perms.SavePermission(ctx, storage.PermissionClipboard, granted)
	}
	return granted
}

// RestorePermission re-requests access at startup when it was granted in an
// earlier session.
func (a *Adapter) RestorePermission(ctx context.Context) bool {
	if a.perms == nil || !a.perms.LoadPermission(ctx, storage.PermissionClipboard) {
		return false
	}
	return a.RequestPermission(ctx)
}

// Read performs a permission-gated read of the clipboard. Images win over
// plain text, plain text over HTML. Returns nil when there is nothing to add.
func (a *Adapter) Read(ctx context.Context) *core.Item {
	if !a.host.Available() {
		a.log.Warn("clipboard read skipped", "error", ErrUnsupported)
		return nil
	}
	if !a.HasPermission() {
		a.log.Warn("clipboard read skipped: no permission")
		return nil
	}

	entries, err := a.host.Read(ctx)
	if err != nil {
		a.log.Error("failed to read from clipboard", "error", err)
		return nil
	}
	if it := a.fromEntries(entries); it != nil {
		return it
	}

	text, err := a.host.ReadText(ctx)
	if err != nil {
		a.log.Error("failed to read clipboard text", "error", err)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	it := a.textItem(text)
	return &it
}

func (a *Adapter) fromEntries(entries []Entry) *core.Item {
	if hasRaster(entries) {
		for _, e := range entries {
			if core.IsImageMIME(e.MIME) {
				it := a.imageItem(e.MIME, e.Data, false)
				return &it
			}
		}
	}
	if e, ok := findEntry(entries, MIMEPlain); ok {
		it := a.textItem(string(e.Data))
		return &it
	}
	if e, ok := findEntry(entries, MIMEHTML); ok {
		it := a.htmlItem(string(e.Data))
		return &it
	}
	return nil
}

// FromPaste classifies a paste event: an attached image file first, then
// plain text, then HTML. Returns nil when the event carries nothing usable.
func (a *Adapter) FromPaste(ev PasteEvent) *core.Item {
	if len(ev.Files) > 0 {
		f := ev.Files[0]
		if core.IsImageMIME(f.MIME) {
			it := a.imageItem(f.MIME, f.Data, true)
			return &it
		}
	}
	if text := ev.get(MIMEPlain); text != "" {
		it := a.textItem(text)
		return &it
	}
	if html := ev.get(MIMEHTML); html != "" {
		it := a.htmlItem(html)
		return &it
	}
	return nil
}

// Listen attaches a passive paste listener. cb receives the classified item,
// or nil for events with nothing usable. Events from a PollSource read the
// system clipboard and are dropped while clipboard permission is not held.
// The returned stop func detaches the listener and waits for it to exit.
func (a *Adapter) Listen(ctx context.Context, src EventSource, cb func(*core.Item)) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	events, err := src.Events(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	_, gated := src.(*PollSource)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if gated && !a.HasPermission() {
				continue
			}
			cb(a.FromPaste(ev))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (a *Adapter) imageItem(mime string, data []byte, pasted bool) core.Item {
	url := core.EncodeDataURL(mime, data)
	w, h := core.ImageDimensions(data)
	return core.Item{
		ID:        a.newID(),
		Type:      core.TypeImage,
		Content:   url,
		Preview:   url,
		Title:     core.TitleFor(core.TypeImage, pasted),
		Timestamp: core.Millis(a.now()),
		Metadata: core.Metadata{
			Source: core.SourceClipboard,
			Image:  &core.ImageMeta{Width: w, Height: h, MimeType: mime},
		},
	}
}

func (a *Adapter) textItem(text string) core.Item {
	text = core.Clamp(text)
	typ := core.ClassifyText(text)
	meta := core.Metadata{Source: core.SourceClipboard}
	if typ == core.TypeCode {
		if lang := core.GuessLanguage(text); lang != "" {
			meta.Code = &core.CodeMeta{Language: lang}
		}
	}
	return core.Item{
		ID:        a.newID(),
		Type:      typ,
		Content:   text,
		Title:     core.TitleFor(typ, false),
		Timestamp: core.Millis(a.now()),
		Metadata:  meta,
	}
}

func (a *Adapter) htmlItem(html string) core.Item {
	return core.Item{
		ID:        a.newID(),
		Type:      core.TypeHTML,
		Content:   core.Clamp(html),
		Title:     core.TitleFor(core.TypeHTML, false),
		Timestamp: core.Millis(a.now()),
		Metadata:  core.Metadata{Source: core.SourceClipboard},
	}
}

func hasRaster(entries []Entry) bool {
	for _, e := range entries {
		for _, m := range rasterMIMEs {
			if strings.EqualFold(e.MIME, m) {
				return true
			}
		}
	}
	return false
}

func findEntry(entries []Entry, mime string) (Entry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.MIME, mime) && len(e.Data) > 0 {
			return e, true
		}
	}
	return Entry{}, false
}
