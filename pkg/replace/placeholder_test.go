package replace

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		content     string
		want        []string
		description string
	}{
		{"no tokens here", nil, "plain content"},
		{"Hi {{name}}!", []string{"name"}, "single token"},
		{"{{greeting}} {{name}}, {{greeting}} again", []string{"greeting", "name"}, "duplicates deduped in first-appearance order"},
		{"{{a}}{{b}}{{c}}", []string{"a", "b", "c"}, "adjacent tokens"},
		{"Signed on {{date}} at {{time}}", []string{"date", "time"}, "clock tokens"},
		{"{{ name }}", nil, "inner spaces not a token"},
		{"{{first-name}}", nil, "hyphen not a token"},
		{"{{snake_case_2}}", []string{"snake_case_2"}, "underscores and digits"},
		{"{single} braces {{}}", nil, "single braces and empty token"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			got := Placeholders(tc.content)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Placeholders(%q) mismatch (-want +got):\n%s", tc.content, diff)
			}
		})
	}
}

func TestRender(t *testing.T) {
	values := map[string]string{"name": "Ada", "city": "London"}

	cases := []struct {
		content     string
		want        string
		description string
	}{
		{"Hi {{name}}!", "Hi Ada!", "simple substitution"},
		{"{{name}} of {{city}}", "Ada of London", "two tokens"},
		{"{{name}} and {{name}}", "Ada and Ada", "repeated token"},
		{"Hi {{unknown}}!", "Hi {{unknown}}!", "unknown token kept verbatim"},
		{"no tokens", "no tokens", "no tokens"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			if got := Render(tc.content, values); got != tc.want {
				t.Errorf("Render(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

func TestRenderEmptyValues(t *testing.T) {
	content := "untouched {{name}}"
	if got := Render(content, nil); got != content {
		t.Errorf("Render with nil values = %q, want input unchanged", got)
	}
}

func TestAutoValues(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := AutoValues(now)

	want := map[string]string{
		"date":     "2026-03-14",
		"time":     "09:26",
		"datetime": "2026-03-14 09:26:53",
		"year":     "2026",
		"weekday":  "Saturday",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AutoValues mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAuto(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got := RenderAuto("{{date}}: ping {{name}}", now, map[string]string{"name": "Ada"})
	if got != "2026-03-14: ping Ada" {
		t.Errorf("RenderAuto = %q", got)
	}

	// overrides win over clock values
	got = RenderAuto("{{date}}", now, map[string]string{"date": "someday"})
	if got != "someday" {
		t.Errorf("override lost: %q", got)
	}
}
