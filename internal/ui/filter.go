package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"pdfdesk/internal/filemanager"
)

// listFilter narrows a folder listing to the names matching a query typed
// in the browser.
type listFilter struct {
	minCoverage float64 // share of the query that must match a name
	maxSpread   int     // widest gap between first and last matched rune
	limit       int     // rows kept
}

// entries returns indices into files. Plain substring hits win, names that
// start with the query first; only when none exist are fuzzy matches used.
// An empty query keeps every entry.
func (f listFilter) entries(query string, files []filemanager.FileDetails) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		idx := make([]int, len(files))
		for i := range files {
			idx[i] = i
		}
		return idx
	}
	if hits := f.substring(q, files); len(hits) > 0 {
		return hits
	}
	return f.fuzzy(q, files)
}

func (f listFilter) substring(q string, files []filemanager.FileDetails) []int {
	var prefix, inner []int
	for i, fd := range files {
		name := strings.ToLower(fd.Name)
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, i)
		case strings.Contains(name, q):
			inner = append(inner, i)
		}
	}
	return f.cap(append(prefix, inner...))
}

// names exposes the lower-cased listing to fuzzy.FindFrom.
type names []filemanager.FileDetails

func (n names) String(i int) string { return strings.ToLower(n[i].Name) }
func (n names) Len() int            { return len(n) }

func (f listFilter) fuzzy(q string, files []filemanager.FileDetails) []int {
	matches := fuzzy.FindFrom(q, names(files))

	var kept []int
	for _, mt := range matches {
		if matchCoverage(q, mt) < f.minCoverage || matchSpread(mt) > f.maxSpread {
			continue
		}
		kept = append(kept, mt.Index)
	}
	// loose matches beat an empty screen
	if len(kept) == 0 {
		for _, mt := range matches {
			kept = append(kept, mt.Index)
		}
	}
	return f.cap(kept)
}

func (f listFilter) cap(idx []int) []int {
	if f.limit > 0 && len(idx) > f.limit {
		idx = idx[:f.limit]
	}
	return idx
}

// matchCoverage is the share of query runes that matched.
func matchCoverage(q string, m fuzzy.Match) float64 {
	if len(q) == 0 {
		return 1
	}
	return float64(len(m.MatchedIndexes)) / float64(len(q))
}

func matchSpread(m fuzzy.Match) int {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	return m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0]
}

