package match

import "unicode"

// boundarySet holds every rune treated as a word edge: whitespace,
// newline forms, and sentence punctuation. The virtual positions before
// the first character and after the last one also count as boundaries;
// callers handle those positions since no rune exists there.
var boundarySet = map[rune]struct{}{
	' ':  {},
	'\t': {},
	'\n': {},
	'\r': {},
	'.':  {},
	',':  {},
	'!':  {},
	'?':  {},
	';':  {},
	':':  {},
	'(':  {},
	')':  {},
	'[':  {},
	']':  {},
}

// IsBoundary reports whether r marks the edge of a word. A CRLF pair is
// a single boundary event; each of its runes still satisfies IsBoundary
// on its own.
func IsBoundary(r rune) bool {
	_, ok := boundarySet[r]
	return ok
}

// IsWordChar reports whether r can be part of a plain word: letters,
// digits, underscore. Word characters and boundaries are mutually
// exclusive; runes outside both sets (emoji, symbols) are neither.
func IsWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Boundaries returns the boundary runes in stable order, for diagnostics
// and property tests that iterate every configured delimiter.
func Boundaries() []rune {
	out := []rune{' ', '\t', '\n', '\r', '.', ',', '!', '?', ';', ':', '(', ')', '[', ']'}
	return out
}
