package core

import (
	"strings"
	"unicode"
)

// MaxContentLen bounds text payloads accepted from the clipboard.
const MaxContentLen = 256_000

// Normalize trims s and collapses whitespace runs to single spaces. It is used
// for fingerprints and search; stored content keeps its original layout.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Clamp cuts s to MaxContentLen bytes without splitting a rune.
func Clamp(s string) string {
	if len(s) <= MaxContentLen {
		return s
	}
	cut := MaxContentLen
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
