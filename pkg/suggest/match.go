package suggest

import (
	"sort"

	"github.com/bastiangx/tagserve/internal/utils"
	"github.com/bastiangx/tagserve/pkg/tags"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// MatchPartial keeps the catalog entries whose label contains query,
// ignoring case. An empty query keeps everything.
func MatchPartial(query string, catalog []tags.Suggestion) []tags.Suggestion {
	out := make([]tags.Suggestion, 0, len(catalog))
	for _, s := range catalog {
		if utils.StringContainsIgnoreCase(s.Label, query) {
			out = append(out, s)
		}
	}
	return out
}

// MatchPrefix keeps the catalog entries with a word starting with query,
// so "king" finds "United Kingdom" but "ngdom" does not. Catalog order is kept.
func MatchPrefix(query string, catalog []tags.Suggestion) []tags.Suggestion {
	if query == "" {
		return append([]tags.Suggestion(nil), catalog...)
	}

	positions := NewPrefixIndex(catalog).Lookup(query)
	out := make([]tags.Suggestion, 0, len(positions))
	for _, pos := range positions {
		out = append(out, catalog[pos])
	}
	return out
}

// PrefixIndex maps every word start of every label to catalog positions.
type PrefixIndex struct {
	trie *patricia.Trie
}

// NewPrefixIndex indexes catalog. Positions refer to catalog.
func NewPrefixIndex(catalog []tags.Suggestion) *PrefixIndex {
	trie := patricia.NewTrie()
	for pos, s := range catalog {
		for _, word := range utils.WordStarts(s.Label) {
			key := patricia.Prefix(word)
			if item := trie.Get(key); item != nil {
				trie.Set(key, append(item.([]int), pos))
				continue
			}
			trie.Insert(key, []int{pos})
		}
	}
	return &PrefixIndex{trie: trie}
}

// Lookup returns the sorted, de-duplicated positions whose labels have a word
// starting with query.
func (ix *PrefixIndex) Lookup(query string) []int {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil
	}

	seen := make(map[int]struct{})
	var positions []int

	prefix := patricia.Prefix(normalized)
	err := ix.trie.VisitSubtree(prefix, func(_ patricia.Prefix, item patricia.Item) error {
		for _, pos := range item.([]int) {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting prefix index: %v", err)
		return nil
	}

	sort.Ints(positions)
	return positions
}

// normalizeQuery lowercases query and drops leading separators so it lines up
// with the keys produced by utils.WordStarts.
func normalizeQuery(s string) string {
	starts := utils.WordStarts(s)
	if len(starts) == 0 {
		return ""
	}
	return starts[0]
}
