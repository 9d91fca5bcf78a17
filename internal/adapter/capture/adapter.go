package capture

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterboard/internal/core"
)

// CandidateSources is the fixed list offered before a capture. The host's
// own chooser makes the real selection.
var CandidateSources = []Source{
	{ID: "tab", Name: "Browser - Current Tab", Kind: "tab"},
	{ID: "screen", Name: "Entire Screen", Kind: "screen"},
}

type Adapter struct {
	host  Host
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

func NewAdapter(host Host, log *slog.Logger) *Adapter {
	if host == nil {
		host = unsupportedHost{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		host:  host,
		log:   log.With("component", "capture"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (a *Adapter) IsSupported() bool { return a.host.Supported() }

func (a *Adapter) ListCandidateSources() []Source {
	return append([]Source(nil), CandidateSources...)
}

// CaptureFrame grabs one frame and returns it as a pinned capture item, or
// nil if anything fails. The stream is always stopped.
func (a *Adapter) CaptureFrame(ctx context.Context) *core.Item {
	if !a.host.Supported() {
		a.log.Warn("screen capture skipped", "error", ErrUnsupported)
		return nil
	}

	stream, err := a.host.Acquire(ctx)
	if err != nil {
		a.log.Error("failed to acquire capture stream", "error", err)
		return nil
	}
	defer func() {
		if err := stream.Stop(); err != nil {
			a.log.Warn("failed to stop capture stream", "error", err)
		}
	}()

	img, err := stream.GrabFrame(ctx)
	if err != nil {
		a.log.Error("failed to capture screen", "error", err)
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		a.log.Error("failed to encode capture", "error", err)
		return nil
	}

	b := img.Bounds()
	url := core.EncodeDataURL("image/png", buf.Bytes())
	return &core.Item{
		ID:        a.newID(),
		Type:      core.TypeCapture,
		Content:   url,
		Preview:   url,
		Title:     core.TitleFor(core.TypeCapture, false),
		Timestamp: core.Millis(a.now()),
		IsPinned:  true,
		Metadata: core.Metadata{
			Source: core.SourceCapture,
			Image:  &core.ImageMeta{Width: b.Dx(), Height: b.Dy(), MimeType: "image/png"},
		},
	}
}

// CaptureWithOptions captures a frame and sets its pin state from
// opts.AddToLibrary. sourceID is advisory only.
func (a *Adapter) CaptureWithOptions(ctx context.Context, sourceID string, opts Options) *core.Item {
	a.log.Debug("capture requested", "source", sourceID, "library", opts.AddToLibrary, "canvas", opts.AddToCanvas)
	it := a.CaptureFrame(ctx)
	if it == nil {
		return nil
	}
	it.IsPinned = opts.AddToLibrary
	return it
}
