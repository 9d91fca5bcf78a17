package core

import (
	"fmt"
	"regexp"
	"strings"
)

// PrivacyFilter drops clipboard text that looks like a secret before it
// reaches the library.
type PrivacyFilter struct {
	// If true, patterns are treated as regex. If false, case-insensitive substring match.
	UseRegex bool

	// Patterns to ignore (e.g. "token=", "password=", "Authorization: Bearer")
	Patterns []string

	compiled []*regexp.Regexp
}

func NewPrivacyFilter(patterns []string, useRegex bool) (*PrivacyFilter, error) {
	pf := &PrivacyFilter{
		UseRegex: useRegex,
		Patterns: patterns,
	}
	if !useRegex {
		return pf, nil
	}
	pf.compiled = make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("privacy pattern %q: %w", p, err)
		}
		pf.compiled = append(pf.compiled, re)
	}
	return pf, nil
}

// Matches reports whether content hits any pattern.
func (pf *PrivacyFilter) Matches(content string) bool {
	if pf == nil {
		return false
	}
	s := strings.TrimSpace(content)
	if s == "" {
		return false
	}

	if pf.UseRegex {
		for _, re := range pf.compiled {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}

	low := strings.ToLower(s)
	for _, p := range pf.Patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(low, p) {
			return true
		}
	}
	return false
}

// ShouldIgnore applies the filter to text-like clipboard items only; images,
// captures and custom widgets always pass.
func (pf *PrivacyFilter) ShouldIgnore(it Item) bool {
	if it.Source() != SourceClipboard {
		return false
	}
	switch it.Type {
	case TypeText, TypeCode, TypeHTML:
		return pf.Matches(it.Content)
	}
	return false
}
