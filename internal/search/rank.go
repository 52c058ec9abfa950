package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Rank reorders remote search results by how well their title matches query.
// The sort is stable so the API's own order breaks ties.
func Rank[T any](query string, items []T, titleOf func(T) string) []T {
	if len(items) == 0 || strings.TrimSpace(query) == "" {
		return items
	}

	query = strings.ToLower(strings.TrimSpace(query))

	type rankedItem struct {
		item  T
		score int
	}

	ranked := make([]rankedItem, len(items))
	for i, item := range items {
		ranked[i] = rankedItem{item: item, score: Score(strings.ToLower(titleOf(item)), query)}
	}

	// Sort by score (lower is better)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]T, len(ranked))
	for i, r := range ranked {
		results[i] = r.item
	}
	return results
}

// Score rates a lowercase title against a lowercase query. Lower is better.
func Score(title, query string) int {
	// Exact match is best
	if title == query {
		return 0
	}

	// Prefix match is very good
	if strings.HasPrefix(title, query) {
		return 10
	}

	// Contains match is good
	if strings.Contains(title, query) {
		return 50
	}

	// Characters in order, e.g. "fmab" in "fullmetal alchemist brotherhood"
	if fuzzy.Match(query, title) {
		return min(75+fuzzy.RankMatch(query, title)/10, 99)
	}

	return 100 + fuzzy.LevenshteinDistance(query, title)
}

// Lookup returns the subset of candidates that fuzzily contain query,
// closest first.
func Lookup(query string, candidates []string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	matches := fuzzy.RankFindFold(query, candidates)
	sort.Sort(matches)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Target
	}
	return out
}
