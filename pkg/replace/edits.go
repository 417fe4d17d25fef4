package replace

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Edit is one contiguous replacement: bytes [Start, End) of the old text
// become Text. Offsets always refer to the old text, so a host can apply
// a whole run of edits against the buffer it already holds.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Edits computes the minimal replacement runs that turn before into
// after. Adjacent delete/insert pairs collapse into a single Edit.
// Identical inputs yield nil.
func Edits(before, after string) []Edit {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var edits []Edit
	pos := 0
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += len(d.Text)

		case diffmatchpatch.DiffDelete:
			edit := Edit{Start: pos, End: pos + len(d.Text)}
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				edit.Text = diffs[i+1].Text
				i++
			}
			edits = append(edits, edit)
			pos = edit.End

		case diffmatchpatch.DiffInsert:
			edits = append(edits, Edit{Start: pos, End: pos, Text: d.Text})
		}
	}
	return edits
}

// ApplyEdits replays a run of edits over the text they were computed
// against. Edits must be in ascending order and non-overlapping, which
// is what Edits produces.
func ApplyEdits(text string, edits []Edit) string {
	if len(edits) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, e := range edits {
		b.WriteString(text[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.WriteString(text[pos:])
	return b.String()
}
