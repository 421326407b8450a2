// Package suggest finds console names close to what was typed.
//
// Match ranks names that contain the query as a subsequence, favouring
// prefixes, consecutive runs and matches right after an underscore:
//
//	suggest.Match("vol", []string{"s_volume", "sv_cheats", "volume"}, 0)
//	// volume, s_volume
//
// Closest picks the name with the smallest edit distance, for "did you
// mean" hints on mistyped input.
package suggest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Result is a ranked match.
type Result struct {
	// Name is the matched name.
	Name string

	// Score is the match score (higher is better).
	Score int

	// Matches holds the rune indices of matched characters.
	Matches []int
}

// Scoring weights.
const (
	baseScore         = 100
	consecutiveBonus  = 20
	boundaryBonus     = 15
	prefixBonus       = 25
	exactPrefixBonus  = 50
	gapPenalty        = 2
	shortNameBaseline = 20
)

// Match returns the names containing query as a case-insensitive
// subsequence, best first. Ties are broken by name. A limit of zero or less
// returns every match. An empty query matches nothing.
func Match(query string, names []string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	queryRunes := []rune(query)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		if matches := subsequence(queryRunes, name); matches != nil {
			results = append(results, Result{
				Name:    name,
				Score:   score(queryRunes, name, matches),
				Matches: matches,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// subsequence returns the rune indices of a greedy left-to-right match of
// query in name, or nil if name does not contain every query rune in order.
func subsequence(query []rune, name string) []int {
	text := []rune(strings.ToLower(name))
	matches := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(query) {
		return nil
	}
	return matches
}

func score(query []rune, name string, matches []int) int {
	original := []rune(name)
	text := []rune(strings.ToLower(name))

	s := baseScore
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, idx := range matches {
		if isBoundary(original, idx) {
			s += boundaryBonus
		}
	}
	if matches[0] == 0 {
		s += prefixBonus
	} else {
		s -= matches[0]
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	if len(text) < shortNameBaseline {
		s += shortNameBaseline - len(text)
	}
	if strings.HasPrefix(string(text), string(query)) {
		s += exactPrefixBonus
	}
	return max(s, 1)
}

// isBoundary reports whether the rune at idx starts a word.
func isBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	prev, curr := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}

// Closest returns the name with the smallest case-insensitive edit distance
// to name, provided that distance is at most maxDistance. Ties go to the
// lexically smaller name.
func Closest(name string, names []string, maxDistance int) (string, bool) {
	lower := strings.ToLower(name)
	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range names {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(candidate))
		if d < bestDistance || (d == bestDistance && candidate < best) {
			best, bestDistance = candidate, d
		}
	}
	return best, bestDistance <= maxDistance
}
