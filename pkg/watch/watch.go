// Package watch reports settled changes to template directories and fixture
// files so callers can reload and re-render.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	defaultDebounce = 300 * time.Millisecond
	defaultTick     = 100 * time.Millisecond
)

// ChangeFunc receives the settled paths of one batch, sorted.
type ChangeFunc func(ctx context.Context, changed []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must stay quiet before it is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithTick sets how often pending paths are checked.
func WithTick(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.tick = d
		}
	}
}

// WithExtensions limits directory events to files with these extensions.
// Watched files are always reported.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.extensions = append(w.extensions, ext)
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Stats counts watcher activity.
type Stats struct {
	Events    int
	Batches   int
	Errors    int
	LastPath  string
	LastEvent time.Time
}

// Watcher batches fsnotify events per path and calls onChange once a path has
// been quiet for the debounce window.
type Watcher struct {
	mu         sync.Mutex
	dirs       map[string]struct{}
	files      map[string]struct{}
	onChange   ChangeFunc
	extensions []string
	debounce   time.Duration
	tick       time.Duration
	pending    map[string]time.Time
	stopCh     chan struct{}
	doneCh     chan struct{}
	running    bool
	stats      Stats
	logger     *zap.Logger
}

// New prepares a watcher over paths. Directories are watched for files inside
// them; files are watched through their parent directory so editors that
// replace files on save are still seen. Nothing is opened until Start.
func New(paths []string, onChange ChangeFunc, options ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watch: onChange is required")
	}

	w := &Watcher{
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
		onChange: onChange,
		debounce: defaultDebounce,
		tick:     defaultTick,
		pending:  make(map[string]time.Time),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch: stat %q: %w", path, err)
		}
		if info.IsDir() {
			w.dirs[abs] = struct{}{}
		} else {
			w.files[abs] = struct{}{}
		}
	}
	if len(w.dirs) == 0 && len(w.files) == 0 {
		return nil, errors.New("watch: no paths to watch")
	}
	return w, nil
}

// Start begins watching. It does not block; the event loop runs until Stop
// is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch: add %q: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("path", dir))
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.run(ctx, fsw, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the event loop and waits for it to exit. Safe to call more than
// once and after ctx cancellation.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	w.logger.Debug("watcher stopped")
}

// Running reports whether the event loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		w.mu.Lock()
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
	}()
	defer close(doneCh)
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Warn("close watcher", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(event.Name)
	if !w.wants(path) {
		return
	}

	w.logger.Debug("file event", zap.String("path", path), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.stats.Events++
	w.stats.LastPath = path
	w.stats.LastEvent = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var settled []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Batches++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.logger.Info("change detected", zap.Strings("paths", settled))
	w.onChange(ctx, settled)
}

func (w *Watcher) wants(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	if _, ok := w.dirs[filepath.Dir(path)]; !ok {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, allowed := range w.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (w *Watcher) watchDirs() []string {
	set := make(map[string]struct{}, len(w.dirs)+len(w.files))
	for dir := range w.dirs {
		set[dir] = struct{}{}
	}
	for file := range w.files {
		set[filepath.Dir(file)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for dir := range set {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}
