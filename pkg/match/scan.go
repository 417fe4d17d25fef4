package match

import "unicode/utf8"

type scanKind int

const (
	// scanNoCandidate: the look-back window is empty.
	scanNoCandidate scanKind = iota
	// scanDeadPath: a non-empty window exists but no boundary-anchored
	// trie path ends at the scan position.
	scanDeadPath
	// scanLive: the longest boundary-anchored trie path was found.
	scanLive
)

// scanOutcome carries the longest live span ending exactly at the scan
// position, with its terminal payload when the span is itself a trigger.
// extended reports whether some longer trigger continues below the span;
// a live non-terminal span always has extensions.
type scanOutcome struct {
	kind     scanKind
	span     string
	start    int
	end      int
	entry    Entry
	terminal bool
	extended bool
}

// scan finds the longest boundary-anchored trie path ending exactly at
// end. The walk looks back at most maxLen runes (plus one rune of peek
// for each anchor check), so cost is bounded by the longest trigger,
// never by len(text).
//
// A candidate start is anchored when it is the start of input, follows a
// boundary rune, or opens with the configured prefix rune. The walk
// stops early at the first rune outside the trigger alphabet: no span
// crossing it can be in the trie.
func scan(idx *Index, text string, end int) scanOutcome {
	if end <= 0 {
		return scanOutcome{kind: scanNoCandidate}
	}

	var anchors []int
	pos := end
	for steps := 0; pos > 0 && steps < idx.maxLen; steps++ {
		r, size := utf8.DecodeLastRuneInString(text[:pos])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if !idx.inAlphabet(r) {
			break
		}
		pos -= size
		if anchoredAt(idx, text, pos) {
			anchors = append(anchors, pos)
		}
	}

	// Anchors were collected nearest-first; probe from the back so the
	// longest span wins.
	for i := len(anchors) - 1; i >= 0; i-- {
		start := anchors[i]
		span := text[start:end]
		if !idx.livePath(span) {
			continue
		}
		out := scanOutcome{kind: scanLive, span: span, start: start, end: end}
		if entry, ok := idx.terminalAt(span); ok {
			out.entry = entry
			out.terminal = true
			out.extended = idx.hasExtensions(span)
		} else {
			out.extended = true
		}
		return out
	}
	return scanOutcome{kind: scanDeadPath}
}

// anchoredAt reports whether a span starting at byte offset start would
// satisfy the leading-boundary rule.
func anchoredAt(idx *Index, text string, start int) bool {
	if start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	if IsBoundary(prev) {
		return true
	}
	if idx.prefixRune != 0 {
		r, _ := utf8.DecodeRuneInString(text[start:])
		if r == idx.prefixRune {
			return true
		}
	}
	return false
}
