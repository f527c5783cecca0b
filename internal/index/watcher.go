package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherOptions configures CorpusWatcher.
type WatcherOptions struct {
	// DebounceWindow coalesces rapid writes (an editor saving a document
	// multiple times in a row) into a single change event.
	DebounceWindow time.Duration
	// EventBufferSize is the size of the changed-paths channel buffer.
	EventBufferSize int
}

// DefaultWatcherOptions returns sensible defaults for a corpus directory.
func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{
		DebounceWindow:  500 * time.Millisecond,
		EventBufferSize: 100,
	}
}

// CorpusWatcher watches a corpus directory for added or changed files and
// emits their paths, debounced, for re-ingestion. It is optional: loaders can
// ingest a corpus as a one-shot batch without ever constructing one.
type CorpusWatcher struct {
	fsw     *fsnotify.Watcher
	opts    WatcherOptions
	changes chan string
	errs    chan error

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewCorpusWatcher creates a watcher. The caller must call Start to begin
// watching and Stop to release the underlying fsnotify handle.
func NewCorpusWatcher(opts WatcherOptions) (*CorpusWatcher, error) {
	if opts.DebounceWindow <= 0 || opts.EventBufferSize <= 0 {
		opts = DefaultWatcherOptions()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &CorpusWatcher{
		fsw:     fsw,
		opts:    opts,
		changes: make(chan string, opts.EventBufferSize),
		errs:    make(chan error, 10),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start adds root and every subdirectory under it to the watch set, then
// begins the event loop. It returns once the initial directory walk
// completes; the loop itself runs in a background goroutine until ctx is
// cancelled or Stop is called.
func (w *CorpusWatcher) Start(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk corpus root: %w", err)
	}

	go w.loop(ctx)
	return nil
}

func (w *CorpusWatcher) loop(ctx context.Context) {
	defer close(w.changes)
	defer close(w.errs)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounce(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
				slog.Warn("corpus watcher: error channel full, dropping", slog.Any("error", err))
			}
		}
	}
}

// debounce coalesces repeated events for the same path into one emission
// after DebounceWindow of quiet.
func (w *CorpusWatcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.opts.DebounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.changes <- path:
		default:
			slog.Warn("corpus watcher: change channel full, dropping event", slog.String("path", path))
		}
	})
}

// Changes returns the debounced, changed-path events. Closed once the
// watcher stops.
func (w *CorpusWatcher) Changes() <-chan string { return w.changes }

// Errors returns non-fatal watcher errors. Closed once the watcher stops.
func (w *CorpusWatcher) Errors() <-chan error { return w.errs }

// Stop releases the underlying fsnotify handle. Safe to call once.
func (w *CorpusWatcher) Stop() error {
	return w.fsw.Close()
}
