package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/its-jojoo/otterboard/internal/core"
)

var (
	pinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	typeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

const idWidth = 8

func shortID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}

// renderItem formats one list row: index, pin marker, short id, type, title,
// age and a one-line preview.
func renderItem(i int, it core.Item, now time.Time, width uint) string {
	pin := " "
	if it.IsPinned {
		pin = pinStyle.Render("★")
	}
	return fmt.Sprintf("%2d %s %-8s %s %s · %s  %s",
		i+1, pin, shortID(it.ID),
		typeStyle.Render("["+string(it.Type)+"]"),
		it.Title,
		humanize.RelTime(it.Time(), now, "ago", "from now"),
		preview(it, width),
	)
}

func preview(it core.Item, width uint) string {
	switch it.Type {
	case core.TypeImage, core.TypeCapture:
		if m := it.Metadata.Image; m != nil {
			return fmt.Sprintf("%dx%d %s", m.Width, m.Height, m.MimeType)
		}
		return "(image)"
	}
	s := strings.Join(strings.Fields(it.Content), " ")
	return truncate.StringWithTail(s, width, "…")
}
