package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == ','
}

// EqualFold performs case-insensitive rune equality check
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}

	// Try simple ASCII case folding first (faster)
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}

	return unicode.SimpleFold(a) == b || unicode.SimpleFold(b) == a || strings.EqualFold(string(a), string(b))
}

// StringContainsIgnoreCase checks if string contains substring case-insensitively
func StringContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// FoldRanges returns the byte ranges of every non-overlapping, case-insensitive
// occurrence of substr in s. Each range is [start, end).
func FoldRanges(s, substr string) [][2]int {
	if substr == "" {
		return nil
	}
	sr := []rune(s)
	pr := []rune(substr)

	var ranges [][2]int
	offsets := runeOffsets(s)
	for i := 0; i+len(pr) <= len(sr); {
		match := true
		for j := range pr {
			if !EqualFold(sr[i+j], pr[j]) {
				match = false
				break
			}
		}
		if !match {
			i++
			continue
		}
		ranges = append(ranges, [2]int{offsets[i], offsets[i+len(pr)]})
		i += len(pr)
	}
	return ranges
}

// runeOffsets maps rune positions to byte offsets, with a trailing entry for len(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// WordStarts returns the lowercase suffixes of s that begin at a word boundary,
// e.g. "British Virgin Islands" -> "british virgin islands", "virgin islands", "islands".
func WordStarts(s string) []string {
	lower := strings.ToLower(s)
	var out []string
	atBoundary := true
	for i, r := range lower {
		if IsSeparator(r) {
			atBoundary = true
			continue
		}
		if atBoundary {
			out = append(out, lower[i:])
			atBoundary = false
		}
	}
	return out
}
