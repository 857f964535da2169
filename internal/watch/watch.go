// Package watch re-runs a callback whenever the files that decide the
// workflow phase change: anything under specs/ and the checked-out branch
// in .git/HEAD.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.DebounceDelay is zero.
const DefaultDebounce = 200 * time.Millisecond

// SpecsDir is the feature document root spec-kit creates in a worktree.
const SpecsDir = "specs"

// Config configures a Watcher.
type Config struct {
	// Worktree is the repository root to watch.
	Worktree string

	// DebounceDelay is how long events must settle before the callback runs.
	DebounceDelay time.Duration

	Logger *slog.Logger
}

// Watcher collects file events and runs a callback once they settle.
type Watcher struct {
	config  Config
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	specs   string
	gitHEAD string

	pendingMu sync.Mutex
	pending   bool
	lastEvent time.Time
}

// New creates a Watcher. Call Run to start it.
func New(config Config) (*Watcher, error) {
	if config.Worktree == "" {
		return nil, fmt.Errorf("watch: worktree is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounce
	}

	return &Watcher{
		config:  config,
		fsw:     fsw,
		logger:  logger,
		specs:   filepath.Join(config.Worktree, SpecsDir),
		gitHEAD: filepath.Join(config.Worktree, ".git", "HEAD"),
	}, nil
}

// Run calls fn once immediately and again after every settled batch of
// relevant changes, until ctx is cancelled. Calls to fn never overlap.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context)) error {
	defer func() { _ = w.fsw.Close() }()

	// The root watch catches specs/ being created after start.
	if err := w.fsw.Add(w.config.Worktree); err != nil {
		return fmt.Errorf("watch: %s: %w", w.config.Worktree, err)
	}
	if err := w.fsw.Add(filepath.Dir(w.gitHEAD)); err != nil {
		w.logger.Warn("Not watching branch changes", "path", w.gitHEAD, "error", err)
	}
	w.addRecursive(w.specs)

	w.logger.Info("Watching for workflow changes",
		"worktree", w.config.Worktree,
		"debounce", w.config.DebounceDelay)

	fn(ctx)

	ticker := time.NewTicker(max(w.config.DebounceDelay/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.settled(time.Now()) {
				fn(ctx)
			}
		}
	}
}

// relevant reports whether a path can affect the phase report.
func (w *Watcher) relevant(path string) bool {
	if path == w.gitHEAD || path == w.specs {
		return true
	}
	return strings.HasPrefix(path, w.specs+string(filepath.Separator))
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
		}
	}

	w.pendingMu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("Workflow file changed", "path", event.Name, "op", event.Op.String())
}

// settled reports, and clears, a pending batch whose last event is at
// least one debounce interval old.
func (w *Watcher) settled(now time.Time) bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if !w.pending || now.Sub(w.lastEvent) < w.config.DebounceDelay {
		return false
	}
	w.pending = false
	return true
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// specs/ not existing yet is the common case.
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// Dedup remembers the last key it saw and reports when it changes.
type Dedup struct {
	last string
	seen bool
}

// Changed reports whether key differs from the previous call. The first
// call always reports true.
func (d *Dedup) Changed(key string) bool {
	if d.seen && d.last == key {
		return false
	}
	d.last = key
	d.seen = true
	return true
}
