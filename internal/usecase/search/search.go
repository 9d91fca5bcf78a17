// Package search ranks library items against a query.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/its-jojoo/otterboard/internal/core"
)

// Lister supplies the items to search, newest first.
type Lister interface {
	All() []core.Item
}

type Options struct {
	ScanLimit int
	OutLimit  int
	Now       time.Time // optional, for tests
}

type Service struct {
	items Lister
}

func New(items Lister) *Service {
	return &Service{items: items}
}

type scored struct {
	it    core.Item
	score int
}

// Query returns items whose title or text matches q. Literal matches are
// ranked by match quality, pin state and recency; when nothing matches
// literally the query is retried as a fuzzy subsequence.
func (s *Service) Query(q string, opt Options) []core.Item {
	if opt.ScanLimit <= 0 {
		opt.ScanLimit = 500
	}
	if opt.OutLimit <= 0 {
		opt.OutLimit = 20
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}

	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	items := s.items.All()
	if len(items) > opt.ScanLimit {
		items = items[:opt.ScanLimit]
	}

	results := make([]scored, 0, len(items))
	for _, it := range items {
		match := max(scoreMatch(strings.ToLower(it.Title), q), scoreMatch(strings.ToLower(searchable(it)), q))
		if match == 0 {
			continue
		}
		results = append(results, scored{it: it, score: match + boost(it, now)})
	}

	if len(results) == 0 {
		results = fuzzyFallback(items, q, now)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].it.Timestamp > results[j].it.Timestamp
	})

	if opt.OutLimit > len(results) {
		opt.OutLimit = len(results)
	}
	out := make([]core.Item, 0, opt.OutLimit)
	for i := 0; i < opt.OutLimit; i++ {
		out = append(out, results[i].it)
	}
	return out
}

// searchable is the text of an item worth matching against. Image payloads
// are data URLs and never match.
func searchable(it core.Item) string {
	switch it.Type {
	case core.TypeImage, core.TypeCapture:
		return ""
	}
	return core.Normalize(it.Content)
}

type corpus []core.Item

func (c corpus) String(i int) string {
	return strings.ToLower(c[i].Title + " " + searchable(c[i]))
}

func (c corpus) Len() int { return len(c) }

func fuzzyFallback(items []core.Item, q string, now time.Time) []scored {
	matches := fuzzy.FindFrom(q, corpus(items))
	out := make([]scored, 0, len(matches))
	for _, m := range matches {
		it := items[m.Index]
		out = append(out, scored{it: it, score: m.Score + boost(it, now)})
	}
	return out
}

func boost(it core.Item, now time.Time) int {
	score := 0
	if it.IsPinned {
		score += 5000
	}
	age := now.Sub(it.Time())
	switch {
	case age < 10*time.Minute:
		score += 400
	case age < time.Hour:
		score += 250
	case age < 24*time.Hour:
		score += 120
	case age < 7*24*time.Hour:
		score += 40
	}
	return score
}

func scoreMatch(s, q string) int {
	if s == "" {
		return 0
	}
	if s == q {
		return 3000
	}
	if strings.HasPrefix(s, q) {
		return 2000
	}
	if idx := strings.Index(s, q); idx >= 0 {
		return 1000 + max(0, 200-idx)
	}
	return 0
}
