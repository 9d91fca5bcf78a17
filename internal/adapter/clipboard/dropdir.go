package clipboard

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// DropDir is an EventSource fed by files written into a directory: every
// file that settles becomes one paste event and is removed afterwards.
type DropDir struct {
	Dir    string
	Settle time.Duration
	Keep   bool // leave files in place after emitting
}

func NewDropDir(dir string) *DropDir {
	return &DropDir{Dir: dir, Settle: 150 * time.Millisecond}
}

func (d *DropDir) Events(ctx context.Context) (<-chan PasteEvent, error) {
	dir, err := homedir.Expand(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("drop dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("drop dir: create: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("drop dir: watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("drop dir: watch %s: %w", dir, err)
	}

	settle := d.Settle
	if settle <= 0 {
		settle = 150 * time.Millisecond
	}

	ch := make(chan PasteEvent)
	ready := make(chan string)

	var mu sync.Mutex
	timers := map[string]*time.Timer{}

	go func() {
		defer close(ch)
		defer w.Close()
		defer func() {
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				path := ev.Name
				mu.Lock()
				if t, ok := timers[path]; ok {
					t.Reset(settle)
				} else {
					timers[path] = time.AfterFunc(settle, func() {
						select {
						case ready <- path:
						case <-ctx.Done():
						}
					})
				}
				mu.Unlock()

			case path := <-ready:
				mu.Lock()
				delete(timers, path)
				mu.Unlock()

				pe, ok := d.load(path)
				if !ok {
					continue
				}
				select {
				case ch <- pe:
				case <-ctx.Done():
					return
				}

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

func (d *DropDir) load(path string) (PasteEvent, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return PasteEvent{}, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return PasteEvent{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return PasteEvent{}, false
	}
	if !d.Keep {
		_ = os.Remove(path)
	}

	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return PasteEvent{Files: []File{{Name: name, MIME: mt, Data: data}}}, true
	case mt == MIMEHTML:
		return PasteEvent{Data: map[string]string{MIMEHTML: string(data)}}, true
	default:
		return PasteEvent{Data: map[string]string{MIMEPlain: string(data)}}, true
	}
}
