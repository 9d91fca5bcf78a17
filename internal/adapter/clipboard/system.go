package clipboard

import (
	"context"
	"strings"
	"sync"

	atotto "github.com/atotto/clipboard"
	xclip "golang.design/x/clipboard"
)

// SystemHost reads the OS clipboard. Images and text come from
// golang.design/x/clipboard when it can initialize (cgo builds with a
// display); otherwise text falls back to atotto/clipboard, which shells out
// to pbpaste, xclip, xsel or wl-paste.
type SystemHost struct {
	once    sync.Once
	initErr error
}

func NewSystemHost() *SystemHost { return &SystemHost{} }

func (h *SystemHost) native() bool {
	h.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				h.initErr = ErrUnsupported
			}
		}()
		h.initErr = xclip.Init()
	})
	return h.initErr == nil
}

func (h *SystemHost) Available() bool {
	return h.native() || !atotto.Unsupported
}

func (h *SystemHost) Read(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.native() {
		text, err := atotto.ReadAll()
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return []Entry{{MIME: MIMEPlain, Data: []byte(text)}}, nil
	}

	var out []Entry
	if img := xclip.Read(xclip.FmtImage); len(img) > 0 {
		out = append(out, Entry{MIME: "image/png", Data: img})
	}
	if text := xclip.Read(xclip.FmtText); len(text) > 0 {
		out = append(out, Entry{MIME: MIMEPlain, Data: text})
	}
	return out, nil
}

func (h *SystemHost) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := atotto.ReadAll()
	if err == nil {
		return strings.TrimRight(text, "\n"), nil
	}
	if h.native() {
		return string(xclip.Read(xclip.FmtText)), nil
	}
	return "", err
}
