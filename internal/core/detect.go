package core

import (
	"strings"
)

// codeKeywords gate the code heuristic. The check is a best-effort guess and
// misclassifies freely (any prose mentioning "class" inside braces reads as code).
var codeKeywords = []string{"function", "const", "class", "import"}

// LooksLikeCode reports whether s contains both braces and one of codeKeywords.
func LooksLikeCode(s string) bool {
	if !strings.Contains(s, "{") || !strings.Contains(s, "}") {
		return false
	}
	for _, kw := range codeKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ClassifyText picks TypeCode or TypeText for a plain-text payload.
func ClassifyText(s string) Type {
	if LooksLikeCode(s) {
		return TypeCode
	}
	return TypeText
}

// GuessLanguage tags code with a language when one is obvious. Empty otherwise.
func GuessLanguage(s string) string {
	switch {
	case strings.Contains(s, "package ") && strings.Contains(s, "func "):
		return "go"
	case strings.Contains(s, "def ") && strings.Contains(s, "import "):
		return "python"
	case strings.Contains(s, "function") || strings.Contains(s, "const ") || strings.Contains(s, "=>"):
		return "javascript"
	}
	return ""
}

// TitleFor returns the default title for an acquired item of type t.
func TitleFor(t Type, pasted bool) string {
	switch t {
	case TypeImage:
		if pasted {
			return "Pasted Image"
		}
		return "Clipboard Image"
	case TypeCode:
		return "Code Snippet"
	case TypeHTML:
		return "HTML Content"
	case TypeCapture:
		return "Screen Capture"
	case TypeCustom:
		return "Custom Element"
	}
	return "Text Snippet"
}
