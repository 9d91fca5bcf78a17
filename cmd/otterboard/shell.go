package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterboard/internal/adapter/capture"
	"github.com/its-jojoo/otterboard/internal/adapter/clipboard"
	"github.com/its-jojoo/otterboard/internal/core"
	"github.com/its-jojoo/otterboard/internal/usecase/ingest"
	"github.com/its-jojoo/otterboard/internal/usecase/library"
	"github.com/its-jojoo/otterboard/internal/usecase/search"
)

const usage = "Commands: add <text> | paste | read | grant | capture [tab|screen] [canvas] [nolib] | sources |\n" +
	"          custom <button|input|checkbox|radio|dropdown|toggle> <label> [style] [size] | list [clipboard|pinned|captures|all] |\n" +
	"          show <id> | pin <id> | rm <id> | title <id> <text> | clear | search <q> | copy <id> |\n" +
	"          drag <id> <x> <y> | count | pause | resume | quit"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive library shell (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func runShell(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	sh := &shell{
		lib:     a.lib,
		ingest:  a.ingest,
		search:  a.search,
		clip:    a.clip,
		capture: a.capture,
		copier:  a.host,
		out:     os.Stdout,
		now:     time.Now,
	}
	sh.canvas = printCanvas{out: sh.out}

	stops, err := a.listen(ctx, nil)
	if err != nil {
		a.log.Warn("passive clipboard listener disabled", "error", err)
	}
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	fmt.Fprintln(sh.out, "otterboard")
	fmt.Fprintln(sh.out, usage)
	return sh.run(ctx, os.Stdin)
}

type clipboardSource interface {
	Read(ctx context.Context) *core.Item
	FromPaste(ev clipboard.PasteEvent) *core.Item
	RequestPermission(ctx context.Context) bool
}

type copier interface {
	Copy(it core.Item) (clipboard.CopyMethod, error)
}

type shell struct {
	lib     *library.Manager
	ingest  *ingest.Service
	search  *search.Service
	clip    clipboardSource
	capture *capture.Adapter
	copier  copier
	canvas  library.DropTarget
	out     io.Writer
	now     func() time.Time

	paused bool
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)

	for {
		fmt.Fprint(s.out, "> ")
		raw, err := readLine(r)
		if err != nil {
			return eofOK(err)
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		cmd, arg := splitCmd(line)
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if cmd == "paste" {
			if s.paused {
				fmt.Fprintln(s.out, "paused: not capturing")
				continue
			}
			fmt.Fprint(s.out, "(paste) ")
			text, err := readLine(r)
			if err != nil {
				return eofOK(err)
			}
			s.saveText(ctx, text)
			continue
		}
		s.exec(ctx, cmd, arg)
	}
}

// readLine returns the next input line without its terminator. Anything past
// core.MaxContentLen is read and discarded so one huge paste cannot end the
// session.
func readLine(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if room := core.MaxContentLen + utf8.UTFMax - b.Len(); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			b.Write(chunk)
		}
		if !more {
			return core.Clamp(b.String()), nil
		}
	}
}

func eofOK(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *shell) exec(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "pause":
		s.paused = true
		fmt.Fprintln(s.out, "capture paused")

	case "resume":
		s.paused = false
		fmt.Fprintln(s.out, "capture resumed")

	case "add":
		if s.paused {
			fmt.Fprintln(s.out, "paused: not capturing")
			return
		}
		if arg == "" {
			fmt.Fprintln(s.out, "usage: add <text>")
			return
		}
		s.saveText(ctx, arg)

	case "grant":
		if s.clip.RequestPermission(ctx) {
			fmt.Fprintln(s.out, "clipboard access granted")
		} else {
			fmt.Fprintln(s.out, "clipboard access denied")
		}

	case "read":
		s.report(s.ingest.ReadClipboard(ctx, s.clip))

	case "sources":
		for _, src := range s.capture.ListCandidateSources() {
			fmt.Fprintf(s.out, "%-7s %s\n", src.ID, src.Name)
		}

	case "capture":
		s.doCapture(ctx, strings.Fields(arg))

	case "custom":
		s.doCustom(ctx, strings.Fields(arg))

	case "list":
		tab := library.TabClipboard
		var items []core.Item
		if arg == "all" {
			items = s.lib.All()
		} else {
			if arg != "" {
				t, err := library.ParseTab(arg)
				if err != nil {
					fmt.Fprintln(s.out, "error:", err)
					return
				}
				tab = t
			}
			items = s.lib.View(tab)
		}
		s.printItems(items)

	case "show":
		it, ok := s.resolve(arg)
		if !ok {
			return
		}
		fmt.Fprintf(s.out, "id:       %s\ntype:     %s\ntitle:    %s\npinned:   %v\nsource:   %s\n", it.ID, it.Type, it.Title, it.IsPinned, it.Source())
		fmt.Fprintln(s.out, preview(it, 2000))

	case "pin":
		it, ok := s.resolve(arg)
		if !ok {
			return
		}
		s.lib.TogglePin(ctx, it.ID)
		if cur, ok := s.lib.Get(it.ID); ok && cur.IsPinned {
			fmt.Fprintln(s.out, "pinned")
		} else {
			fmt.Fprintln(s.out, "unpinned")
		}

	case "rm":
		it, ok := s.resolve(arg)
		if !ok {
			return
		}
		s.lib.Remove(ctx, it.ID)
		fmt.Fprintln(s.out, "removed")

	case "title":
		id, title := splitCmd(arg)
		it, ok := s.resolve(id)
		if !ok {
			return
		}
		if title == "" {
			fmt.Fprintln(s.out, "usage: title <id> <text>")
			return
		}
		if _, err := s.lib.Update(ctx, it.ID, library.Patch{Title: &title}); err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return
		}
		fmt.Fprintln(s.out, "renamed")

	case "clear":
		fmt.Fprintf(s.out, "cleared %d items\n", s.lib.ClearTransient(ctx))

	case "search":
		s.printItems(s.search.Query(arg, search.Options{Now: s.now()}))

	case "copy":
		it, ok := s.resolve(arg)
		if !ok {
			return
		}
		method, err := s.copier.Copy(it)
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return
		}
		fmt.Fprintf(s.out, "copied via %s\n", method)

	case "drag":
		s.doDrag(ctx, strings.Fields(arg))

	case "count":
		fmt.Fprintln(s.out, s.lib.Len())

	case "help":
		fmt.Fprintln(s.out, usage)

	default:
		fmt.Fprintln(s.out, "unknown command:", cmd)
		fmt.Fprintln(s.out, usage)
	}
}

func (s *shell) saveText(ctx context.Context, raw string) {
	it := s.clip.FromPaste(clipboard.PasteEvent{Data: map[string]string{clipboard.MIMEPlain: raw}})
	if it == nil || strings.TrimSpace(it.Content) == "" {
		fmt.Fprintln(s.out, "(ignored)")
		return
	}
	s.report(s.ingest.Accept(ctx, it))
}

func (s *shell) report(it core.Item, saved bool, err error) {
	switch {
	case err != nil:
		fmt.Fprintln(s.out, "error:", err)
	case !saved:
		fmt.Fprintln(s.out, "(ignored)")
	default:
		fmt.Fprintf(s.out, "saved %s [%s]\n", shortID(it.ID), it.Type)
	}
}

func (s *shell) doCapture(ctx context.Context, args []string) {
	opts := capture.Options{AddToLibrary: true}
	source := ""
	for _, a := range args {
		switch a {
		case "canvas":
			opts.AddToCanvas = true
		case "nolib":
			opts.AddToLibrary = false
		default:
			source = a
		}
	}
	if !s.capture.IsSupported() {
		fmt.Fprintln(s.out, "screen capture is not available on this host")
		return
	}
	s.report(s.ingest.Capture(ctx, s.capture, source, opts, s.canvas))
}

func (s *shell) doCustom(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: custom <button|input|checkbox|radio|dropdown|toggle> <label> [style] [size]")
		return
	}
	cfg := core.CustomElementConfig{Type: core.ElementType(args[0]), Label: args[1]}
	if len(args) > 2 {
		cfg.StyleOptions.Style = core.Style(args[2])
	}
	if len(args) > 3 {
		cfg.StyleOptions.Size = core.Size(args[3])
	}
	it, err := s.lib.CreateCustomElement(ctx, cfg)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	fmt.Fprintf(s.out, "created %s %s\n", shortID(it.ID), it.Title)
}

func (s *shell) doDrag(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.out, "usage: drag <id> <x> <y>")
		return
	}
	it, ok := s.resolve(args[0])
	if !ok {
		return
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if err := errors.Join(errX, errY); err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}

	payload, err := s.lib.BeginDrag(it.ID)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	raw, err := payload.Encode()
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	dropped, err := library.DecodeDragPayload(raw)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	if err := s.lib.Drop(ctx, dropped, library.Point{X: x, Y: y}, s.canvas); err != nil {
		fmt.Fprintln(s.out, "error:", err)
	}
}

// resolve finds an item by id or unique id prefix.
func (s *shell) resolve(ref string) (core.Item, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		fmt.Fprintln(s.out, "missing id")
		return core.Item{}, false
	}
	if it, ok := s.lib.Get(ref); ok {
		return it, true
	}
	var found []core.Item
	for _, it := range s.lib.All() {
		if strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 1:
		return found[0], true
	case 0:
		fmt.Fprintln(s.out, "no item", ref)
	default:
		fmt.Fprintln(s.out, "ambiguous id", ref)
	}
	return core.Item{}, false
}

func (s *shell) printItems(items []core.Item) {
	if len(items) == 0 {
		fmt.Fprintln(s.out, "(empty)")
		return
	}
	now := s.now()
	for i, it := range items {
		fmt.Fprintln(s.out, renderItem(i, it, now, 60))
	}
}

// printCanvas stands in for a canvas host by reporting placements.
type printCanvas struct {
	out io.Writer
}

func (c printCanvas) Place(ctx context.Context, it core.Item, at library.Point) error {
	fmt.Fprintf(c.out, "placed %s %q at (%g, %g)\n", shortID(it.ID), it.Title, at.X, at.Y)
	return nil
}

func splitCmd(s string) (cmd, arg string) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", ""
	}
	cmd = strings.ToLower(parts[0])
	if len(parts) > 1 {
		arg = strings.TrimSpace(s[strings.Index(s, parts[0])+len(parts[0]):])
	}
	return cmd, arg
}
