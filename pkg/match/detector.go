// Package match implements the streaming trigger-matching engine: on
// every keystroke it classifies the text immediately preceding the caret
// against a dictionary of trigger strings, each bound to replacement
// content, and reports whether the caret context is a sealed match ready
// for expansion, an ambiguous prefix, mid-typing, or no match at all.
//
// Cost per call is bounded by the longest registered trigger, never by
// the document size, which keeps per-keystroke evaluation well under a
// millisecond on arbitrarily large texts.
package match

import (
	"sync/atomic"
	"unicode/utf8"
)

// Detector owns one Index generation at a time and answers evaluate
// calls against it. Scope a Detector to one host document or session;
// create a fresh one per document rather than sharing globally.
//
// Evaluate is safe to call concurrently with Reconfigure: the index is
// swapped with a single atomic pointer write, so a call in flight
// finishes against whichever generation it started with.
type Detector struct {
	index      atomic.Pointer[Index]
	prefixRune rune
}

// NewDetector builds a Detector over entries. prefix is the optional
// prefix rune exempting triggers that start with it from the leading
// boundary requirement; pass 0 for none. Entries with empty triggers are
// dropped, never fatal.
func NewDetector(entries []Entry, prefix rune) *Detector {
	d := &Detector{prefixRune: prefix}
	d.index.Store(buildIndex(entries, prefix))
	return d
}

// Reconfigure rebuilds the index from scratch and publishes it with one
// atomic swap. Evaluate calls already running complete against the old
// generation; the next call observes the new one.
func (d *Detector) Reconfigure(entries []Entry) {
	d.index.Store(buildIndex(entries, d.prefixRune))
}

// Introspect reports the counters of the most recently published index.
func (d *Detector) Introspect() Stats {
	return d.index.Load().Stats()
}

// EvaluateAtEnd evaluates with the caret at the end of text, the common
// case for hosts that stream whole lines.
func (d *Detector) EvaluateAtEnd(text string) Result {
	return d.Evaluate(text, len(text))
}

// Evaluate classifies the text immediately preceding caret. It is a pure
// function of (current index, text, caret): no side effects and no
// logging on this path.
//
// Out-of-range carets are clamped; a caret inside a multi-byte rune
// snaps back to the rune start.
func (d *Detector) Evaluate(text string, caret int) Result {
	idx := d.index.Load()
	caret = clampCaret(text, caret)
	if caret == 0 {
		return Result{State: StateIdle}
	}

	last, size := utf8.DecodeLastRuneInString(text[:caret])
	if !IsBoundary(last) {
		out := scan(idx, text, caret)
		if out.kind != scanLive {
			return Result{State: StateNoMatch}
		}
		return liveResult(idx, text, caret, out)
	}

	// A just-typed boundary seals the span before it. Strip exactly one
	// boundary event: a CRLF pair counts as one.
	scanEnd := caret - size
	if last == '\n' && scanEnd > 0 {
		if prev, psize := utf8.DecodeLastRuneInString(text[:scanEnd]); prev == '\r' {
			scanEnd -= psize
		}
	}
	if scanEnd == 0 {
		return Result{State: StateIdle}
	}
	if prev, _ := utf8.DecodeLastRuneInString(text[:scanEnd]); IsBoundary(prev) && !idx.inAlphabet(prev) {
		// Consecutive boundaries with no trigger material between them:
		// nothing was being typed.
		return Result{State: StateIdle}
	}

	sealed := scan(idx, text, scanEnd)
	if sealed.kind == scanLive && sealed.terminal {
		return completeResult(sealed)
	}

	// Boundary runes are legal trigger text: the one just typed may
	// extend a span ending at the caret rather than seal one before it.
	if idx.inAlphabet(last) {
		if atCaret := scan(idx, text, caret); atCaret.kind == scanLive {
			return liveResult(idx, text, caret, atCaret)
		}
	}

	// The typed boundary ended a word that never was a trigger.
	return Result{State: StateNoMatch}
}

// liveResult classifies a live span ending exactly at the caret.
func liveResult(idx *Index, text string, caret int, out scanOutcome) Result {
	if !out.terminal {
		return Result{
			State:            StateTyping,
			PotentialTrigger: out.span,
			SpanStart:        out.start,
			SpanEnd:          out.end,
		}
	}

	// Terminal span ending exactly at the caret. What follows decides:
	// an existing boundary character completes it; otherwise a trigger
	// with longer extensions stays ambiguous until sealed, and a leaf
	// trigger completes at end of input but dies before a word char.
	next, hasNext := runeAt(text, caret)
	if out.extended {
		if hasNext && IsBoundary(next) {
			return completeResult(out)
		}
		return Result{
			State:               StateAmbiguous,
			PotentialTrigger:    out.span,
			PossibleCompletions: idx.completionsUnder(out.span),
			SpanStart:           out.start,
			SpanEnd:             out.end,
		}
	}
	if !hasNext || IsBoundary(next) {
		return completeResult(out)
	}
	return Result{State: StateNoMatch}
}

func completeResult(out scanOutcome) Result {
	return Result{
		State:     StateComplete,
		Trigger:   out.entry.Trigger,
		Content:   out.entry.Content,
		SpanStart: out.start,
		SpanEnd:   out.end,
	}
}

// clampCaret snaps caret into [0, len(text)] and backward onto a rune
// start so decoding never sees a partial sequence.
func clampCaret(text string, caret int) int {
	if caret < 0 {
		return 0
	}
	if caret > len(text) {
		return len(text)
	}
	for caret > 0 && caret < len(text) && !utf8.RuneStart(text[caret]) {
		caret--
	}
	return caret
}

func runeAt(text string, pos int) (rune, bool) {
	if pos >= len(text) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return r, true
}
