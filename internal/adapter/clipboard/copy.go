package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	xclip "golang.design/x/clipboard"

	"github.com/its-jojoo/otterboard/internal/core"
)

// CopyMethod reports how an item reached the clipboard.
type CopyMethod uint8

const (
	CopySystem CopyMethod = iota
	CopyOSC52
	CopyImage
)

func (m CopyMethod) String() string {
	switch m {
	case CopyOSC52:
		return "osc52"
	case CopyImage:
		return "image"
	}
	return "system"
}

var (
	clipboardWriteAll   = atotto.WriteAll
	clipboardWriteOSC52 = writeOSC52Clipboard
)

// Copy puts an item back on the system clipboard. Text-like items go through
// the OS clipboard and fall back to an OSC52 escape for remote terminals;
// images need the native clipboard.
func (h *SystemHost) Copy(it core.Item) (CopyMethod, error) {
	switch it.Type {
	case core.TypeImage, core.TypeCapture:
		_, data, err := core.DecodeDataURL(it.Content)
		if err != nil {
			return CopyImage, fmt.Errorf("copy image: %w", err)
		}
		if !h.native() {
			return CopyImage, ErrUnsupported
		}
		xclip.Write(xclip.FmtImage, data)
		return CopyImage, nil
	}
	return copyText(it.Content)
}

func copyText(text string) (CopyMethod, error) {
	err := clipboardWriteAll(text)
	if err == nil {
		return CopySystem, nil
	}
	oscErr := clipboardWriteOSC52(text)
	if oscErr != nil {
		return CopySystem, errors.Join(err, oscErr)
	}
	return CopyOSC52, nil
}

func writeOSC52Clipboard(text string) error {
	if os.Getenv("TERM") == "" || os.Getenv("TERM") == "dumb" {
		return errors.New("OSC52 unavailable for this terminal")
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()
	return writeOSC52Sequence(tty, text)
}

func writeOSC52Sequence(w io.Writer, text string) error {
	termName := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(termName, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}
