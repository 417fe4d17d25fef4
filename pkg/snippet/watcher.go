package snippet

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce is the quiet period a changed file must observe
	// before a reload fires. Editors often write a file several times
	// in quick succession (temp file, rename, chmod).
	DefaultDebounce = 500 * time.Millisecond

	// pollInterval drives the debounce flush check.
	pollInterval = 100 * time.Millisecond
)

// Watcher monitors snippet files and directories for changes and invokes
// a callback once changes have settled. File paths are watched through
// their parent directory since most editors replace files by rename.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	files       map[string]struct{}
	dirs        map[string]struct{}
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onChange    func()
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool
}

// NewWatcher creates a watcher over the given snippet paths. Each path may
// be a file or a directory; directories are watched directly, files via
// their parent. onChange runs on the watcher goroutine after a quiet
// period, so it must not block for long. A debounce of zero or less
// selects DefaultDebounce.
func NewWatcher(paths []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:     fsw,
		files:       make(map[string]struct{}),
		dirs:        make(map[string]struct{}),
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		onChange:    onChange,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	watch := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			log.Warnf("watcher: cannot resolve %s: %v", p, err)
			continue
		}
		info, err := os.Stat(abs)
		if err == nil && info.IsDir() {
			w.dirs[abs] = struct{}{}
			watch[abs] = struct{}{}
			continue
		}
		// Single file: watch the parent directory and filter events.
		w.files[abs] = struct{}{}
		watch[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range watch {
		if err := w.watcher.Add(dir); err != nil {
			log.Warnf("watcher: cannot watch %s: %v", dir, err)
			continue
		}
		log.Debugf("watcher: watching %s", dir)
	}

	return w, nil
}

// Start begins watching in a background goroutine. It is non-blocking
// and safe to call once; later calls are no-ops. A stopped Watcher
// cannot be restarted: Stop releases the filesystem handle, so build a
// new Watcher instead.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.stopped {
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			log.Warnf("watcher: already stopped, not restarting")
		}
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
// It is safe to call more than once, and releases the underlying
// filesystem watcher even if Start was never called.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		log.Errorf("watcher: close: %v", err)
	}
}

// WatchedDirs returns the directories currently under watch.
func (w *Watcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("watcher: context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %v", err)

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

// relevant reports whether an event path is one of the watched files or
// lives under a watched directory.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	_, ok := w.dirs[filepath.Dir(abs)]
	return ok
}

// handleEvent records a relevant filesystem event for debounced handling.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if _, err := DetectFileFormat(event.Name); err != nil {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	log.Debugf("watcher: %s %s", event.Op, event.Name)

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushSettled fires the callback once if any recorded event has been
// quiet for the debounce duration.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	now := time.Now()
	settled := 0
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled++
		}
	}
	w.mu.Unlock()

	if settled > 0 {
		log.Debugf("watcher: %d change(s) settled, reloading", settled)
		w.onChange()
	}
}
