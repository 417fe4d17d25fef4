package snippet

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/truevox/snipmatch/pkg/match"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testDebounce keeps the quiet period short so tests settle quickly.
const testDebounce = 50 * time.Millisecond

func newTestWatcher(t *testing.T, paths []string) (*Watcher, chan struct{}) {
	t.Helper()
	changed := make(chan struct{}, 8)
	w, err := NewWatcher(paths, testDebounce, func() {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	return w, changed
}

func waitForChange(t *testing.T, changed chan struct{}, what string) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatalf("no change callback after %s", what)
	}
}

func expectQuiet(t *testing.T, changed chan struct{}, during time.Duration, what string) {
	t.Helper()
	select {
	case <-changed:
		t.Fatalf("unexpected change callback after %s", what)
	case <-time.After(during):
	}
}

func TestWatcherFiresAfterChange(t *testing.T) {
	dir := t.TempDir()
	w, changed := newTestWatcher(t, []string{dir})
	defer w.Stop()
	w.Start(context.Background())

	writeSnippetFile(t, filepath.Join(dir, "new.toml"), tomlSample)
	waitForChange(t, changed, "creating a snippet file")
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.toml")
	writeSnippetFile(t, path, tomlSample)

	w, changed := newTestWatcher(t, []string{dir})
	defer w.Stop()
	w.Start(context.Background())

	// rapid saves to one file must collapse into a single reload
	for i := 0; i < 5; i++ {
		writeSnippetFile(t, path, tomlSample)
		time.Sleep(5 * time.Millisecond)
	}

	waitForChange(t, changed, "a burst of writes")
	expectQuiet(t, changed, 500*time.Millisecond, "the burst already settled")
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, changed := newTestWatcher(t, []string{dir})
	defer w.Stop()
	w.Start(context.Background())

	writeSnippetFile(t, filepath.Join(dir, "notes.txt"), "not snippets")
	expectQuiet(t, changed, 500*time.Millisecond, "writing a non-snippet file")

	// the watcher must still be alive for real snippet files
	writeSnippetFile(t, filepath.Join(dir, "real.yaml"), yamlSample)
	waitForChange(t, changed, "writing a snippet file")
}

func TestWatcherSingleFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.toml")
	sibling := filepath.Join(dir, "ignored.toml")
	writeSnippetFile(t, target, tomlSample)
	writeSnippetFile(t, sibling, tomlSample)

	w, changed := newTestWatcher(t, []string{target})
	defer w.Stop()
	w.Start(context.Background())

	writeSnippetFile(t, sibling, yamlSample)
	expectQuiet(t, changed, 500*time.Millisecond, "writing a sibling file")

	writeSnippetFile(t, target, tomlSample)
	waitForChange(t, changed, "writing the watched file")
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, []string{dir})
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	// stopping a watcher that never started must release it too
	w2, _ := newTestWatcher(t, []string{dir})
	w2.Stop()
}

func TestWatcherStartAfterStopIsRejected(t *testing.T) {
	dir := t.TempDir()
	w, changed := newTestWatcher(t, []string{dir})
	w.Start(context.Background())
	w.Stop()

	// the filesystem handle is gone; a restart must be refused, not respawned
	w.Start(context.Background())
	w.Stop()

	writeSnippetFile(t, filepath.Join(dir, "late.toml"), tomlSample)
	expectQuiet(t, changed, 300*time.Millisecond, "writing once the watcher stopped")
}

func TestWatcherContextCancel(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, []string{dir})
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.Stop()
}

func TestWatcherWatchedDirs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "single.json")
	writeSnippetFile(t, file, jsonSample)

	w, _ := newTestWatcher(t, []string{file})
	defer w.Stop()

	dirs := w.WatchedDirs()
	if len(dirs) != 1 {
		t.Fatalf("WatchedDirs() = %v, want exactly the parent directory", dirs)
	}
	if dirs[0] != dir {
		t.Errorf("watched %q, want %q", dirs[0], dir)
	}
}

// TestWatcherDrivesLibraryReload exercises the intended wiring: a change
// on disk reloads the library and swaps the engine dictionary.
func TestWatcherDrivesLibraryReload(t *testing.T) {
	dir := t.TempDir()
	writeSnippetFile(t, filepath.Join(dir, "base.toml"),
		"[[snippets]]\ntrigger = \";brb\"\ncontent = \"be right back\"\n")

	lib := NewLibrary([]string{dir})
	if _, err := lib.Reload(); err != nil {
		t.Fatalf("initial Reload failed: %v", err)
	}
	det := match.NewDetector(lib.Entries(), 0)

	reloaded := make(chan struct{}, 8)
	w, err := NewWatcher(lib.Paths(), testDebounce, func() {
		if _, err := lib.Reload(); err != nil {
			t.Errorf("reload on change failed: %v", err)
			return
		}
		det.Reconfigure(lib.Entries())
		reloaded <- struct{}{}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()
	w.Start(context.Background())

	if got := det.EvaluateAtEnd(";omw "); got.State != match.StateNoMatch {
		t.Fatalf("before reload, ;omw should be unknown, got %v", got.State)
	}

	writeSnippetFile(t, filepath.Join(dir, "added.toml"),
		"[[snippets]]\ntrigger = \";omw\"\ncontent = \"on my way!\"\n")
	waitForChange(t, reloaded, "adding a snippet file")

	got := det.EvaluateAtEnd(";omw ")
	if got.State != match.StateComplete {
		t.Fatalf("after reload, state = %v, want complete", got.State)
	}
	if got.Content != "on my way!" {
		t.Errorf("content = %q, want %q", got.Content, "on my way!")
	}
}

func TestWatcherMissingPath(t *testing.T) {
	// a path that cannot be watched is logged and skipped, not fatal
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "ghost", "dir")}, testDebounce, func() {})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	if dirs := w.WatchedDirs(); len(dirs) != 0 {
		t.Errorf("WatchedDirs() = %v, want none for a missing path", dirs)
	}
}

func TestWatcherDefaultDebounce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 0, func() {})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	if w.debounceDur != DefaultDebounce {
		t.Errorf("debounce = %v, want default %v", w.debounceDur, DefaultDebounce)
	}
}

func TestWatcherRemoveTriggersChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.toml")
	writeSnippetFile(t, path, tomlSample)

	w, changed := newTestWatcher(t, []string{dir})
	defer w.Stop()
	w.Start(context.Background())

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, changed, "removing a snippet file")
}
