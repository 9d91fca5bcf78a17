package clipboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/its-jojoo/otterboard/internal/core"
)

func TestCopyText_FallsBackToOSC52(t *testing.T) {
	origWrite, origOSC := clipboardWriteAll, clipboardWriteOSC52
	t.Cleanup(func() { clipboardWriteAll, clipboardWriteOSC52 = origWrite, origOSC })

	var sent string
	clipboardWriteAll = func(string) error { return errors.New("no xclip") }
	clipboardWriteOSC52 = func(text string) error { sent = text; return nil }

	method, err := copyText("hello")
	if err != nil || method != CopyOSC52 || sent != "hello" {
		t.Fatalf("expected OSC52 fallback, got %v %v %q", method, err, sent)
	}

	clipboardWriteOSC52 = func(string) error { return errors.New("no tty") }
	if _, err := copyText("hello"); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("expected joined error, got %v", err)
	}

	clipboardWriteAll = func(string) error { return nil }
	if method, err := copyText("hello"); err != nil || method != CopySystem {
		t.Fatalf("expected system copy, got %v %v", method, err)
	}
}

func TestWriteOSC52Sequence(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")
	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "hi"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "aGk=") {
		t.Fatalf("expected base64 payload in %q", buf.String())
	}
}

func TestSystemHostCopyRejectsBadImage(t *testing.T) {
	h := NewSystemHost()
	if _, err := h.Copy(core.Item{Type: core.TypeCapture, Content: "not a data url"}); err == nil {
		t.Fatalf("expected error for malformed image content")
	}
}
