package game

import (
	"context"
	"os"
	"sync"
	"time"
)

// FileWatcher polls file modification times and reports the files that
// changed since the previous scan. Missing files are remembered as absent so
// that creating one later counts as a change.
type FileWatcher struct {
	paths    []string
	interval time.Duration
	onChange func([]string)

	mu     sync.Mutex
	mtimes map[string]time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFileWatcher creates a watcher over paths. The current state is recorded
// immediately, so only later edits trigger onChange.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(changed []string)) *FileWatcher {
	w := &FileWatcher{
		paths:    append([]string(nil), paths...),
		interval: interval,
		onChange: onChange,
		mtimes:   make(map[string]time.Time, len(paths)),
	}
	w.Scan()
	return w
}

// Scan checks every path once and returns those that changed. It does not
// call onChange.
func (w *FileWatcher) Scan() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for _, p := range w.paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last, seen := w.mtimes[p]
		w.mtimes[p] = mt
		if seen && !mt.Equal(last) {
			changed = append(changed, p)
		}
	}
	return changed
}

// Watch returns a watcher over every file a load of mod reads. After each
// change the cache is dropped, the watched files are refreshed from the
// tables the YAML now references and reload gets the result of a fresh
// LoadMerged.
func (l *Loader) Watch(mod string, interval time.Duration, reload func(RawConfig, error)) (*FileWatcher, error) {
	files, err := l.WatchFiles(mod)
	if err != nil {
		return nil, err
	}
	var w *FileWatcher
	w = NewFileWatcher(files, interval, func([]string) {
		l.Invalidate()
		if files, err := l.WatchFiles(mod); err == nil {
			w.SetPaths(files)
		}
		reload(l.LoadMerged(mod))
	})
	return w, nil
}

// SetPaths replaces the watched files. Files new to the watcher are
// recorded as they are now and only later edits count as changes.
func (w *FileWatcher) SetPaths(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths = append(w.paths[:0:0], paths...)
	mtimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if mt, ok := w.mtimes[p]; ok {
			mtimes[p] = mt
			continue
		}
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		mtimes[p] = mt
	}
	w.mtimes = mtimes
}

// Paths returns the watched files.
func (w *FileWatcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed := w.Scan(); len(changed) > 0 && w.onChange != nil {
				w.onChange(changed)
			}
		}
	}
}

// Start runs the watcher in a goroutine until Stop is called.
func (w *FileWatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		w.Run(ctx)
	}()
}

// Stop terminates a started watcher and waits for it to exit.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
