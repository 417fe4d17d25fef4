package replace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEditsRoundTrip(t *testing.T) {
	cases := []struct {
		before      string
		after       string
		description string
	}{
		{";brb ", "be right back ", "trigger expansion"},
		{"hello world", "hello there world", "insertion in the middle"},
		{"hello cruel world", "hello world", "deletion in the middle"},
		{"aaa bbb ccc", "aaa BBB ccc", "replacement in the middle"},
		{"", "fresh text", "empty before"},
		{"all gone", "", "empty after"},
		{"line one\nline two\n", "line one\nline 2\nline three\n", "multiline change"},
		{"same", "same", "identical"},
		{"héllo wörld", "héllo world", "multibyte runes"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			edits := Edits(tc.before, tc.after)
			got := ApplyEdits(tc.before, edits)
			if got != tc.after {
				t.Errorf("ApplyEdits(%q, Edits(...)) = %q, want %q", tc.before, got, tc.after)
			}
		})
	}
}

func TestEditsIdenticalInputs(t *testing.T) {
	if edits := Edits("unchanged", "unchanged"); edits != nil {
		t.Errorf("Edits on identical inputs = %v, want nil", edits)
	}
}

func TestEditsSingleReplacement(t *testing.T) {
	edits := Edits("aaa bbb ccc", "aaa BBB ccc")
	want := []Edit{{Start: 4, End: 7, Text: "BBB"}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestEditsExpansionPair(t *testing.T) {
	// a delete immediately followed by an insert must collapse into one edit
	edits := Edits(";brb ", "be right back ")
	want := []Edit{{Start: 0, End: 4, Text: "be right back"}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestEditsOffsetsReferenceOldText(t *testing.T) {
	before := "one two three"
	after := "one 2 three four"
	edits := Edits(before, after)

	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(before) {
			t.Errorf("edit %+v out of range for old text of %d bytes", e, len(before))
		}
	}
	if got := ApplyEdits(before, edits); got != after {
		t.Errorf("ApplyEdits = %q, want %q", got, after)
	}
}

func TestApplyEditsNoEdits(t *testing.T) {
	if got := ApplyEdits("steady", nil); got != "steady" {
		t.Errorf("ApplyEdits with no edits = %q, want input unchanged", got)
	}
}
