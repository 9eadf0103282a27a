package suggest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bastiangx/tagserve/internal/utils"
	"github.com/bastiangx/tagserve/pkg/tags"
)

// Constants for scoring
const (
	firstCharMatchBonus            = 15
	adjacentMatchBonus             = 10
	separatorMatchBonus            = 12
	camelCaseMatchBonus            = 12
	unmatchedLeadingCharPenalty    = -3
	maxUnmatchedLeadingCharPenalty = -9
)

// Match is a catalog position with its fuzzy score.
type Match struct {
	Pos            int
	Score          int
	MatchedIndexes []int
}

// MatchFuzzy keeps the catalog entries whose label contains the query runes in
// order, best score first. Equal scores keep catalog order.
// An empty query keeps everything.
func MatchFuzzy(query string, catalog []tags.Suggestion) []tags.Suggestion {
	if query == "" {
		return append([]tags.Suggestion(nil), catalog...)
	}

	matches := FuzzyMatches(query, catalog)
	out := make([]tags.Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, catalog[m.Pos])
	}
	return out
}

// FuzzyMatches scores every label against query and returns the matching
// positions sorted by descending score.
func FuzzyMatches(query string, catalog []tags.Suggestion) []Match {
	pattern := []rune(strings.ToLower(query))
	if len(pattern) == 0 {
		return nil
	}

	var matches []Match
	for pos, s := range catalog {
		match := Match{Pos: pos, MatchedIndexes: make([]int, 0, len(pattern))}
		candidate := []rune(s.Label)
		if runFuzzyMatch(pattern, candidate, &match) {
			// shorter labels with the same matches rank higher
			match.Score += len(match.MatchedIndexes) - len(candidate)
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// runFuzzyMatch tests if pattern matches the candidate runes in order and
// accumulates the score into match. Returns true if every pattern rune matched.
func runFuzzyMatch(pattern, candidate []rune, match *Match) bool {
	var last rune
	var lastIndex int
	var currAdjacentMatchBonus int
	patternIndex := 0
	bestScore := -1
	matchedIndex := -1

	for i := 0; i < len(candidate); i++ {
		curr := candidate[i]

		if utils.EqualFold(curr, pattern[patternIndex]) {
			score := 0

			if i == 0 {
				score += firstCharMatchBonus
			}
			if i > 0 && unicode.IsLower(last) && unicode.IsUpper(curr) {
				score += camelCaseMatchBonus
			}
			if i > 0 && utils.IsSeparator(last) {
				score += separatorMatchBonus
			}

			if len(match.MatchedIndexes) > 0 {
				lastMatch := match.MatchedIndexes[len(match.MatchedIndexes)-1]
				bonus := 0
				if lastIndex == lastMatch {
					bonus = currAdjacentMatchBonus*2 + adjacentMatchBonus
					currAdjacentMatchBonus = bonus
				} else {
					currAdjacentMatchBonus = 0
				}
				score += bonus
			}

			if score > bestScore {
				bestScore = score
				matchedIndex = i
			}

			var nextPatternRune rune
			if patternIndex < len(pattern)-1 {
				nextPatternRune = pattern[patternIndex+1]
			}

			var nextCandidateRune rune
			if i < len(candidate)-1 {
				nextCandidateRune = candidate[i+1]
			}

			// commit when the next runes line up, or when waiting for a better
			// occurrence of this rune could only lose the match
			lastChance := patternIndex == len(pattern)-1 || !canDefer(candidate, i, pattern[patternIndex:])
			if lastChance || utils.EqualFold(nextPatternRune, nextCandidateRune) || nextCandidateRune == 0 {
				if matchedIndex > -1 {
					if len(match.MatchedIndexes) == 0 {
						penalty := matchedIndex * unmatchedLeadingCharPenalty
						bestScore += max(penalty, maxUnmatchedLeadingCharPenalty)
					}

					match.Score += bestScore
					match.MatchedIndexes = append(match.MatchedIndexes, matchedIndex)
					bestScore = -1
					patternIndex++
				}
			}
		}

		last = curr
		lastIndex = i

		if patternIndex >= len(pattern) {
			return true
		}
	}

	return patternIndex >= len(pattern)
}

// canDefer reports whether pattern[0] occurs in candidate after position i
// with the rest of pattern still matching in order behind that occurrence.
func canDefer(candidate []rune, i int, pattern []rune) bool {
	for j := i + 1; j < len(candidate); j++ {
		if utils.EqualFold(candidate[j], pattern[0]) {
			return isSubsequence(candidate[j+1:], pattern[1:])
		}
	}
	return false
}

// isSubsequence reports whether pattern appears in candidate in order.
func isSubsequence(candidate, pattern []rune) bool {
	k := 0
	for _, r := range candidate {
		if k == len(pattern) {
			break
		}
		if utils.EqualFold(r, pattern[k]) {
			k++
		}
	}
	return k == len(pattern)
}
