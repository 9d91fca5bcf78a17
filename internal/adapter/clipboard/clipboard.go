package clipboard

import (
	"context"
	"errors"
)

var ErrUnsupported = errors.New("clipboard not available on this host")

// Entry is one representation of the clipboard contents.
type Entry struct {
	MIME string
	Data []byte
}

// Host is the platform clipboard.
type Host interface {
	// Available is the capability probe.
	Available() bool
	// Read returns every representation the clipboard currently offers, in
	// the host's preference order.
	Read(ctx context.Context) ([]Entry, error)
	// ReadText is the legacy text-only path.
	ReadText(ctx context.Context) (string, error)
}

// File is a file attached to a paste.
type File struct {
	Name string
	MIME string
	Data []byte
}

// PasteEvent is what a native paste delivers: attached files plus string
// data keyed by MIME type.
type PasteEvent struct {
	Files []File
	Data  map[string]string
}

func (ev PasteEvent) get(mime string) string {
	if ev.Data == nil {
		return ""
	}
	return ev.Data[mime]
}

// EventSource emits paste events until ctx is done, then closes the channel.
type EventSource interface {
	Events(ctx context.Context) (<-chan PasteEvent, error)
}

// UnsupportedHost is the host used when no clipboard can be reached.
type UnsupportedHost struct{}

func (UnsupportedHost) Available() bool { return false }

func (UnsupportedHost) Read(ctx context.Context) ([]Entry, error) {
	_ = ctx
	return nil, ErrUnsupported
}

func (UnsupportedHost) ReadText(ctx context.Context) (string, error) {
	_ = ctx
	return "", ErrUnsupported
}
