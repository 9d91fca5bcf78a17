package clipboard

import (
	"context"
	"testing"
	"time"
)

func TestPollSource_EmitsOnChangeOnly(t *testing.T) {
	host := &fakeHost{available: true, entries: []Entry{{MIME: MIMEPlain, Data: []byte("already there")}}}
	src := NewPollSource(host, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := src.Events(ctx)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Fatalf("primed content must not be emitted, got %+v", ev)
	case <-time.After(40 * time.Millisecond):
	}

	host.set(Entry{MIME: MIMEPlain, Data: []byte("fresh")}, Entry{MIME: "image/png", Data: []byte{1, 2, 3}})

	select {
	case ev := <-events:
		if ev.Data[MIMEPlain] != "fresh" || len(ev.Files) != 1 || ev.Files[0].MIME != "image/png" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change")
	}

	cancel()
	for range events {
	}
}

func TestPollSource_Unsupported(t *testing.T) {
	if _, err := NewPollSource(UnsupportedHost{}, 0).Events(context.Background()); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
