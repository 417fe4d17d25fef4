package match

import (
	"errors"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry binds a trigger string to its replacement content. Entries are
// immutable values; validation happens once, at index build.
type Entry struct {
	Trigger string
	Content string
}

// Stats describes one index generation for introspection. NodeCount and
// TreeDepth refer to the character-level prefix tree: one node per
// distinct trigger prefix plus the root, depth equal to the longest
// trigger's rune length.
type Stats struct {
	TriggerCount     int
	MaxTriggerLength int
	NodeCount        int
	TreeDepth        int
}

// Index is one immutable generation of the trigger dictionary: the trie,
// the trigger alphabet, and the derived scan bounds. Built once, swapped
// wholesale by the Detector, never mutated after publication.
type Index struct {
	trie       *patricia.Trie
	alphabet   map[rune]struct{}
	prefixRune rune
	maxLen     int
	stats      Stats
}

// buildIndex constructs a fresh Index from entries. Duplicate triggers:
// the last entry wins. Entries with an empty trigger are dropped and
// counted, never fatal. prefix == 0 means no prefix rune is configured.
func buildIndex(entries []Entry, prefix rune) *Index {
	idx := &Index{
		trie:       patricia.NewTrie(),
		alphabet:   make(map[rune]struct{}),
		prefixRune: prefix,
	}

	dropped := 0
	distinct := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Trigger == "" {
			dropped++
			continue
		}
		idx.trie.Set(patricia.Prefix(e.Trigger), e)
		distinct[e.Trigger] = struct{}{}
	}
	if dropped > 0 {
		log.Warnf("Dropped %d dictionary entries with empty triggers", dropped)
	}

	triggers := make([]string, 0, len(distinct))
	for t := range distinct {
		triggers = append(triggers, t)
		runes := []rune(t)
		if len(runes) > idx.maxLen {
			idx.maxLen = len(runes)
		}
		for _, r := range runes {
			idx.alphabet[r] = struct{}{}
		}
	}
	// The alphabet is every accepted trigger rune plus the prefix rune.
	if prefix != 0 {
		idx.alphabet[prefix] = struct{}{}
	}

	idx.stats = Stats{
		TriggerCount:     len(triggers),
		MaxTriggerLength: idx.maxLen,
		NodeCount:        charNodeCount(triggers),
		TreeDepth:        idx.maxLen,
	}
	log.Debugf("Built trigger index: %d triggers, %d nodes, depth %d",
		idx.stats.TriggerCount, idx.stats.NodeCount, idx.stats.TreeDepth)
	return idx
}

// charNodeCount counts distinct rune prefixes across all triggers plus
// the root. Sorting clusters shared prefixes so each is counted once,
// via the rune-level common prefix with the previous trigger.
func charNodeCount(triggers []string) int {
	sorted := make([]string, len(triggers))
	copy(sorted, triggers)
	sort.Strings(sorted)

	nodes := 1
	var prev []rune
	for _, t := range sorted {
		cur := []rune(t)
		lcp := 0
		for lcp < len(cur) && lcp < len(prev) && cur[lcp] == prev[lcp] {
			lcp++
		}
		nodes += len(cur) - lcp
		prev = cur
	}
	return nodes
}

// Stats returns the introspection counters for this generation.
func (idx *Index) Stats() Stats {
	return idx.stats
}

func (idx *Index) inAlphabet(r rune) bool {
	_, ok := idx.alphabet[r]
	return ok
}

// livePath reports whether span is a path from the trie root, terminal
// or not.
func (idx *Index) livePath(span string) bool {
	return idx.trie.MatchSubtree(patricia.Prefix(span))
}

// terminalAt returns the entry owning span when span is itself a
// registered trigger.
func (idx *Index) terminalAt(span string) (Entry, bool) {
	item := idx.trie.Get(patricia.Prefix(span))
	if item == nil {
		return Entry{}, false
	}
	entry, ok := item.(Entry)
	if !ok {
		log.Errorf("Unknown item type %T in trigger index for %q", item, span)
		return Entry{}, false
	}
	return entry, true
}

var errStopVisit = errors.New("stop visit")

// hasExtensions reports whether some registered trigger is strictly
// longer than span while sharing it as a prefix.
func (idx *Index) hasExtensions(span string) bool {
	err := idx.trie.VisitSubtree(patricia.Prefix(span), func(p patricia.Prefix, _ patricia.Item) error {
		if len(p) > len(span) {
			return errStopVisit
		}
		return nil
	})
	return errors.Is(err, errStopVisit)
}

// completionsUnder returns every registered trigger at or below span in
// lexicographic order. span itself is included when terminal.
func (idx *Index) completionsUnder(span string) []string {
	var out []string
	err := idx.trie.VisitSubtree(patricia.Prefix(span), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trigger subtree for %q: %v", span, err)
		return nil
	}
	sort.Strings(out)
	return out
}
