// Package capture acquires single frames from the screen and turns them into
// pinned library items.
package capture

import (
	"context"
	"errors"
	"image"
)

var (
	ErrUnsupported = errors.New("screen capture not available on this host")
	ErrCancelled   = errors.New("screen capture cancelled")
)

// Host grants access to a capture stream. On hosts with a native chooser the
// user picks the source during Acquire.
type Host interface {
	Supported() bool
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is an acquired capture source. Stop must be called once the caller
// is done with it, whatever the outcome.
type Stream interface {
	GrabFrame(ctx context.Context) (image.Image, error)
	Stop() error
}

// Source is a capture candidate offered to the user.
type Source struct {
	ID   string
	Name string
	Kind string
}

// Options controls what happens to a captured frame.
type Options struct {
	AddToLibrary bool
	AddToCanvas  bool
}

type unsupportedHost struct{}

func (unsupportedHost) Supported() bool { return false }

func (unsupportedHost) Acquire(ctx context.Context) (Stream, error) {
	_ = ctx
	return nil, ErrUnsupported
}
