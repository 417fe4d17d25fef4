// Package replace turns Complete match results into buffer edits: direct
// splices with undo, minimal edit runs for delta-applying hosts, and
// placeholder rendering for snippet content.
package replace

import (
	"fmt"
	"time"

	"github.com/truevox/snipmatch/pkg/match"
)

// Buffer is a text buffer with a caret, the unit Apply operates on.
type Buffer struct {
	Text  string
	Caret int
}

// Undo captures what Apply replaced so the expansion can be reverted.
type Undo struct {
	start    int
	original string
	expanded string
}

// Apply splices the expansion of a Complete result into the buffer. The
// matched span is replaced by the result content with clock placeholders
// ({{date}}, {{time}}, ...) already rendered; everything after the span,
// including the boundary that sealed it, stays in place. The caret shifts
// by the length difference. Non-clock placeholders stay verbatim for the
// host to fill in.
//
// The span must still hold the matched trigger; if the buffer changed
// since evaluation, Apply refuses rather than corrupt text.
func Apply(buf Buffer, result match.Result) (Buffer, *Undo, error) {
	if result.State != match.StateComplete {
		return Buffer{}, nil, fmt.Errorf("cannot apply a %s result", result.State)
	}
	if result.SpanStart < 0 || result.SpanEnd < result.SpanStart || result.SpanEnd > len(buf.Text) {
		return Buffer{}, nil, fmt.Errorf("span [%d,%d) out of range for %d bytes",
			result.SpanStart, result.SpanEnd, len(buf.Text))
	}
	if buf.Caret < result.SpanEnd || buf.Caret > len(buf.Text) {
		return Buffer{}, nil, fmt.Errorf("caret %d outside the sealed span ending at %d",
			buf.Caret, result.SpanEnd)
	}
	if got := buf.Text[result.SpanStart:result.SpanEnd]; got != result.Trigger {
		return Buffer{}, nil, fmt.Errorf("buffer changed since evaluation: span holds %q, matched %q",
			got, result.Trigger)
	}

	expanded := RenderAuto(result.Content, time.Now(), nil)
	out := Buffer{
		Text:  buf.Text[:result.SpanStart] + expanded + buf.Text[result.SpanEnd:],
		Caret: buf.Caret + len(expanded) - (result.SpanEnd - result.SpanStart),
	}
	undo := &Undo{
		start:    result.SpanStart,
		original: result.Trigger,
		expanded: expanded,
	}
	return out, undo, nil
}

// Revert restores the trigger text an earlier Apply replaced. It checks
// that the expanded region is still intact before touching the buffer.
func (u *Undo) Revert(buf Buffer) (Buffer, error) {
	end := u.start + len(u.expanded)
	if u.start < 0 || end > len(buf.Text) || buf.Text[u.start:end] != u.expanded {
		return Buffer{}, fmt.Errorf("expansion at %d no longer present, cannot revert", u.start)
	}

	out := Buffer{
		Text: buf.Text[:u.start] + u.original + buf.Text[end:],
	}
	switch {
	case buf.Caret >= end:
		out.Caret = buf.Caret - len(u.expanded) + len(u.original)
	case buf.Caret > u.start:
		// caret sat inside the expansion; park it after the restored trigger
		out.Caret = u.start + len(u.original)
	default:
		out.Caret = buf.Caret
	}
	return out, nil
}
