package snippet

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/truevox/snipmatch/internal/utils"
	"github.com/truevox/snipmatch/pkg/match"
)

// Report summarizes one library reload for diagnostics.
type Report struct {
	Sources    int // paths that loaded without error
	Accepted   int // snippets that passed validation
	Dropped    int // snippets rejected at ingestion
	Overridden int // triggers registered more than once; the last wins
}

// Library merges snippets from a fixed set of source paths (files or
// directories). A reload re-reads everything and swaps the merged list
// wholesale; readers always observe a complete generation.
type Library struct {
	paths []string

	mu       sync.RWMutex
	snippets []Snippet
	report   Report
}

// NewLibrary creates a library over the given source paths. Nothing is
// read until Reload.
func NewLibrary(paths []string) *Library {
	return &Library{paths: paths}
}

// Reload re-reads every source path, validates the result, and publishes
// the merged list. Paths that fail to load are logged and skipped; an
// error is returned only when every path failed and nothing loaded.
func (l *Library) Reload() (Report, error) {
	var merged []Snippet
	var report Report
	failures := 0

	for _, path := range l.paths {
		loaded, err := LoadPath(path)
		if err != nil {
			failures++
			log.Errorf("Snippet source %s failed: %v", path, err)
			continue
		}
		report.Sources++
		merged = append(merged, loaded...)
	}
	if failures > 0 && report.Sources == 0 && len(l.paths) > 0 {
		return Report{}, fmt.Errorf("no snippet source could be loaded (%d failed)", failures)
	}

	valid := make([]Snippet, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, s := range merged {
		if err := utils.ValidateTrigger(s.Trigger); err != nil {
			report.Dropped++
			log.Warnf("Dropping snippet from %s: %v", sourceLabel(s.Source), err)
			continue
		}
		if seen[s.Trigger] {
			report.Overridden++
			log.Debugf("Trigger %q from %s overrides an earlier definition",
				s.Trigger, sourceLabel(s.Source))
		}
		seen[s.Trigger] = true
		valid = append(valid, s)
	}
	report.Accepted = len(valid)

	l.mu.Lock()
	l.snippets = valid
	l.report = report
	l.mu.Unlock()

	log.Debugf("Library reloaded: %d accepted, %d dropped, %d overridden from %d sources",
		report.Accepted, report.Dropped, report.Overridden, report.Sources)
	return report, nil
}

// Snippets returns a copy of the current merged snippet list.
func (l *Library) Snippets() []Snippet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Snippet, len(l.snippets))
	copy(out, l.snippets)
	return out
}

// Entries converts the current snippet list for the matching engine,
// preserving order so the engine's last-wins policy applies.
func (l *Library) Entries() []match.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Entries(l.snippets)
}

// Report returns the summary of the most recent reload.
func (l *Library) Report() Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.report
}

// Paths returns the configured source paths.
func (l *Library) Paths() []string {
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}
