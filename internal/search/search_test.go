package search

import (
	"testing"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	titles := []string{"Cowboy Bebop", "Fullmetal Alchemist", "Trigun"}

	matches := Filter("bebop", titles)
	require.NotEmpty(t, matches)
	assert.Equal(t, 0, matches[0].Index)
	assert.NotEmpty(t, matches[0].MatchedIndexes)

	assert.Nil(t, Filter("  ", titles))
	assert.Empty(t, Filter("zzzz", titles))
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	matches := Filter("TRIGUN", []string{"trigun stampede", "Trigun"})
	assert.Len(t, matches, 2)
}

func TestFilterItems(t *testing.T) {
	chars := []domain.CharacterRecord{
		domain.NewCharacterRecord(1, "Spike Spiegel", ""),
		domain.NewCharacterRecord(2, "Faye Valentine", ""),
		domain.NewCharacterRecord(3, "Jet Black", ""),
	}

	got := FilterItems("faye", chars)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].MalID)

	assert.Equal(t, chars, FilterItems("", chars))
}

func TestRankOrdersByMatchQuality(t *testing.T) {
	titles := []string{
		"Naruto Shippuden",
		"Boruto: Naruto Next Generations",
		"Naruto",
		"Nartuo",
	}

	got := Rank("naruto", titles, func(s string) string { return s })
	assert.Equal(t, []string{
		"Naruto",                          // exact
		"Naruto Shippuden",                // prefix
		"Boruto: Naruto Next Generations", // contains
		"Nartuo",                          // edit distance
	}, got)
}

func TestRankStableForTies(t *testing.T) {
	titles := []string{"Naruto A", "Naruto B", "Naruto C"}
	got := Rank("naruto", titles, func(s string) string { return s })
	assert.Equal(t, titles, got)
}

func TestScoreSubsequence(t *testing.T) {
	s := Score("fullmetal alchemist brotherhood", "fmab")
	assert.Greater(t, s, 50)
	assert.Less(t, s, 100)
}

func TestLookup(t *testing.T) {
	tags := []string{"blue_sky", "sky", "long_hair", "skyscraper"}

	got := Lookup("sky", tags)
	require.NotEmpty(t, got)
	assert.Equal(t, "sky", got[0])
	assert.NotContains(t, got, "long_hair")
	assert.Nil(t, Lookup("", tags))
}
