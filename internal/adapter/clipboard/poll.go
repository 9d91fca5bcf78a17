package clipboard

import (
	"context"
	"time"

	"github.com/its-jojoo/otterboard/internal/core"
)

// PollSource turns a Host into an EventSource by polling it and emitting a
// paste event whenever the content fingerprint changes.
type PollSource struct {
	Host     Host
	Interval time.Duration

	last string
}

func NewPollSource(host Host, interval time.Duration) *PollSource {
	if interval <= 0 {
		interval = 350 * time.Millisecond
	}
	return &PollSource{Host: host, Interval: interval}
}

func (p *PollSource) Events(ctx context.Context) (<-chan PasteEvent, error) {
	if !p.Host.Available() {
		return nil, ErrUnsupported
	}
	ch := make(chan PasteEvent, 1)

	// prime initial state so existing content is not replayed
	if entries, err := p.Host.Read(ctx); err == nil {
		p.last = fingerprintEntries(entries)
	}

	t := time.NewTicker(p.Interval)

	go func() {
		defer t.Stop()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				entries, err := p.Host.Read(ctx)
				if err != nil || len(entries) == 0 {
					continue
				}
				fp := fingerprintEntries(entries)
				if fp == "" || fp == p.last {
					continue
				}
				p.last = fp
				select {
				case ch <- eventFromEntries(entries):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func eventFromEntries(entries []Entry) PasteEvent {
	ev := PasteEvent{Data: map[string]string{}}
	for _, e := range entries {
		if core.IsImageMIME(e.MIME) {
			ev.Files = append(ev.Files, File{Name: "clipboard", MIME: e.MIME, Data: e.Data})
			continue
		}
		if _, seen := ev.Data[e.MIME]; !seen {
			ev.Data[e.MIME] = string(e.Data)
		}
	}
	return ev
}

func fingerprintEntries(entries []Entry) string {
	var b []byte
	for _, e := range entries {
		b = append(b, e.MIME...)
		b = append(b, 0)
		b = append(b, e.Data...)
		b = append(b, 0)
	}
	return core.Fingerprint(string(b))
}
