package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Tool is one external screenshot program. Args receives the output path.
type Tool struct {
	Name string
	Args func(out string) []string
}

var darwinTools = []Tool{
	{Name: "screencapture", Args: func(out string) []string { return []string{"-i", "-x", out} }},
}

var linuxTools = []Tool{
	{Name: "grim", Args: func(out string) []string { return []string{out} }},
	{Name: "gnome-screenshot", Args: func(out string) []string { return []string{"-a", "-f", out} }},
	{Name: "import", Args: func(out string) []string { return []string{out} }},
}

// KnownTools lists the tools probed on goos, in preference order.
func KnownTools(goos string) []Tool {
	switch goos {
	case "darwin":
		return darwinTools
	case "linux", "freebsd", "openbsd":
		return linuxTools
	}
	return nil
}

var lookPath = exec.LookPath

// DetectHost returns a CommandHost for the first installed tool, or a host
// that reports capture as unsupported. A non-empty name forces that tool.
func DetectHost(name string) Host {
	for _, t := range KnownTools(runtime.GOOS) {
		if name != "" && t.Name != name {
			continue
		}
		if _, err := lookPath(t.Name); err == nil {
			return &CommandHost{Tool: t}
		}
	}
	return unsupportedHost{}
}

// CommandHost captures by running a screenshot tool that writes a PNG to a
// temp file. Interactive tools show their own region or window chooser.
type CommandHost struct {
	Tool Tool
}

func (h *CommandHost) Supported() bool { return h.Tool.Name != "" }

func (h *CommandHost) Acquire(ctx context.Context) (Stream, error) {
	if !h.Supported() {
		return nil, ErrUnsupported
	}
	dir, err := os.MkdirTemp("", "otterboard-capture-*")
	if err != nil {
		return nil, fmt.Errorf("capture: temp dir: %w", err)
	}
	return &fileStream{tool: h.Tool, dir: dir, out: filepath.Join(dir, "frame.png")}, nil
}

type fileStream struct {
	tool Tool
	dir  string
	out  string
}

func (s *fileStream) GrabFrame(ctx context.Context) (image.Image, error) {
	cmd := exec.CommandContext(ctx, s.tool.Name, s.tool.Args(s.out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("capture: %s: %w", s.tool.Name, err)
		}
		return nil, fmt.Errorf("capture: %s: %w: %s", s.tool.Name, err, msg)
	}

	f, err := os.Open(s.out)
	if err != nil {
		// interactive tools exit cleanly without a file when the user backs out
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("capture: open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("capture: decode frame: %w", err)
	}
	return img, nil
}

func (s *fileStream) Stop() error {
	return os.RemoveAll(s.dir)
}
