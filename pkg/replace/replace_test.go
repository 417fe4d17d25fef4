package replace

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/truevox/snipmatch/pkg/match"
)

var testEntries = []match.Entry{
	{Trigger: ";omw", Content: "on my way!"},
	{Trigger: ";brb", Content: "be right back"},
	{Trigger: ";sig", Content: "Best,\n{{name}}"},
}

func completeAt(t *testing.T, text string, caret int) match.Result {
	t.Helper()
	det := match.NewDetector(testEntries, ';')
	result := det.Evaluate(text, caret)
	if result.State != match.StateComplete {
		t.Fatalf("Evaluate(%q, %d).State = %v, want complete", text, caret, result.State)
	}
	return result
}

func TestApplyAtEndOfBuffer(t *testing.T) {
	buf := Buffer{Text: ";omw ", Caret: 5}
	result := completeAt(t, buf.Text, buf.Caret)

	got, undo, err := Apply(buf, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := Buffer{Text: "on my way! ", Caret: 11}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
	if undo == nil {
		t.Fatal("Apply returned nil undo")
	}
}

func TestApplyPreservesSurroundingText(t *testing.T) {
	text := "see you ;omw now"
	// caret just after the sealing space
	buf := Buffer{Text: text, Caret: 13}
	result := completeAt(t, text, buf.Caret)

	got, _, err := Apply(buf, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := Buffer{Text: "see you on my way! now", Caret: 19}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyRejectsNonComplete(t *testing.T) {
	det := match.NewDetector(testEntries, ';')
	result := det.EvaluateAtEnd(";om")
	if result.State == match.StateComplete {
		t.Fatal("test setup broken: ;om should not be complete")
	}

	if _, _, err := Apply(Buffer{Text: ";om", Caret: 3}, result); err == nil {
		t.Error("Apply accepted a non-complete result")
	}
}

func TestApplyRejectsStaleBuffer(t *testing.T) {
	result := completeAt(t, ";brb ", 5)

	// buffer moved on since the evaluation
	stale := Buffer{Text: "xxxx ", Caret: 5}
	if _, _, err := Apply(stale, result); err == nil {
		t.Error("Apply accepted a buffer whose span no longer holds the trigger")
	}
}

func TestApplyRejectsBadOffsets(t *testing.T) {
	cases := []struct {
		result      match.Result
		buf         Buffer
		description string
	}{
		{
			match.Result{State: match.StateComplete, Trigger: ";omw", SpanStart: -1, SpanEnd: 4},
			Buffer{Text: ";omw ", Caret: 5},
			"negative span start",
		},
		{
			match.Result{State: match.StateComplete, Trigger: ";omw", SpanStart: 0, SpanEnd: 99},
			Buffer{Text: ";omw ", Caret: 5},
			"span end past buffer",
		},
		{
			match.Result{State: match.StateComplete, Trigger: ";omw", SpanStart: 0, SpanEnd: 4},
			Buffer{Text: ";omw ", Caret: 2},
			"caret before span end",
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			if _, _, err := Apply(tc.buf, tc.result); err == nil {
				t.Error("Apply accepted an invalid span/caret combination")
			}
		})
	}
}

func TestUndoRoundTrip(t *testing.T) {
	orig := Buffer{Text: "note: ;brb ok?", Caret: 11}
	result := completeAt(t, orig.Text, orig.Caret)

	expanded, undo, err := Apply(orig, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if expanded.Text != "note: be right back ok?" {
		t.Fatalf("expanded text = %q", expanded.Text)
	}

	reverted, err := undo.Revert(expanded)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if diff := cmp.Diff(orig, reverted); diff != "" {
		t.Errorf("revert did not restore the buffer (-want +got):\n%s", diff)
	}
}

func TestUndoDetectsChangedBuffer(t *testing.T) {
	buf := Buffer{Text: ";omw ", Caret: 5}
	result := completeAt(t, buf.Text, buf.Caret)

	expanded, undo, err := Apply(buf, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// user kept typing over the expansion
	changed := Buffer{Text: strings.Replace(expanded.Text, "way", "WAY", 1), Caret: expanded.Caret}
	if _, err := undo.Revert(changed); err == nil {
		t.Error("Revert accepted a buffer where the expansion was edited")
	}
}

func TestUndoCaretInsideExpansion(t *testing.T) {
	buf := Buffer{Text: ";omw ", Caret: 5}
	result := completeAt(t, buf.Text, buf.Caret)

	expanded, undo, err := Apply(buf, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// caret moved into the middle of "on my way!"
	moved := Buffer{Text: expanded.Text, Caret: 4}
	reverted, err := undo.Revert(moved)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if reverted.Text != ";omw " {
		t.Errorf("reverted text = %q, want %q", reverted.Text, ";omw ")
	}
	if reverted.Caret != 4 {
		t.Errorf("caret = %d, want parked at end of restored trigger (4)", reverted.Caret)
	}
}

func TestApplyRendersClockPlaceholders(t *testing.T) {
	det := match.NewDetector([]match.Entry{
		{Trigger: ";now", Content: "as of {{date}}, {{name}} says hi"},
	}, ';')
	result := det.EvaluateAtEnd(";now ")
	if result.State != match.StateComplete {
		t.Fatalf("state = %v, want complete", result.State)
	}

	got, _, err := Apply(Buffer{Text: ";now ", Caret: 5}, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if strings.Contains(got.Text, "{{date}}") {
		t.Errorf("clock placeholder not rendered: %q", got.Text)
	}
	if !strings.Contains(got.Text, time.Now().Format("2006")) {
		t.Errorf("rendered date missing from %q", got.Text)
	}
	if !strings.Contains(got.Text, "{{name}}") {
		t.Errorf("non-clock placeholder should stay verbatim, got %q", got.Text)
	}
}

func TestUndoCaretBeforeExpansion(t *testing.T) {
	text := "see you ;omw now"
	result := completeAt(t, text, 13)

	expanded, undo, err := Apply(Buffer{Text: text, Caret: 13}, result)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	early := Buffer{Text: expanded.Text, Caret: 3}
	reverted, err := undo.Revert(early)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if reverted.Caret != 3 {
		t.Errorf("caret = %d, want 3 (unaffected by a later revert)", reverted.Caret)
	}
}
