// Package search provides local fuzzy filtering of cached lists and
// relevance ranking of remote search results.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Titled is implemented by everything shown in a filterable list.
type Titled interface {
	Title() string
}

// Match is a filter hit.
type Match struct {
	Index          int   // Index in the source slice
	Score          int   // Higher is better
	MatchedIndexes []int // Rune positions for highlighting
}

// Index implements fuzzy.Source over pre-lowercased titles.
type Index struct {
	lowerTitles []string
}

// NewIndex builds an index over titles.
func NewIndex(titles []string) *Index {
	lower := make([]string, len(titles))
	for i, t := range titles {
		lower[i] = strings.ToLower(t)
	}
	return &Index{lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of titles (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.lowerTitles) }

// Find returns the matches of query, best first. An empty query matches nothing.
func (idx *Index) Find(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" || idx.Len() == 0 {
		return nil
	}

	found := fuzzy.FindFrom(strings.ToLower(query), idx)
	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{Index: m.Index, Score: m.Score, MatchedIndexes: m.MatchedIndexes}
	}
	return matches
}

// Filter matches query against titles, best first.
func Filter(query string, titles []string) []Match {
	return NewIndex(titles).Find(query)
}

// FilterItems returns the items whose title matches query, best first.
// An empty query returns items unchanged.
func FilterItems[T Titled](query string, items []T) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title()
	}

	matches := Filter(query, titles)
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}
