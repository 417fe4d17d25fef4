// Package snippet manages trigger dictionaries on disk: file loading in
// several formats, multi-source merging with override accounting, and a
// directory watcher that drives live reconfiguration.
package snippet

import (
	"github.com/truevox/snipmatch/pkg/match"
)

// Snippet binds a trigger to its replacement content. Source carries the
// originating file for diagnostics; it never participates in matching.
type Snippet struct {
	Trigger string `toml:"trigger" yaml:"trigger" json:"trigger"`
	Content string `toml:"content" yaml:"content" json:"content"`
	Source  string `toml:"-" yaml:"-" json:"-"`
}

// Entry converts the snippet to the engine's entry type.
func (s Snippet) Entry() match.Entry {
	return match.Entry{Trigger: s.Trigger, Content: s.Content}
}

// Entries converts a snippet list in order, preserving the override
// semantics of later entries.
func Entries(snippets []Snippet) []match.Entry {
	out := make([]match.Entry, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, s.Entry())
	}
	return out
}
