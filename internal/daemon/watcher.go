package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// ContentWatcher monitors local zone content roots and triggers a debounced
// rebuild when Markdown files change. Git-backed zones are not watched; they
// refresh on the scheduler instead.
type ContentWatcher struct {
	watcher  *fsnotify.Watcher
	onChange func(ctx context.Context)
	debounce time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	kickChan chan struct{}
}

// NewContentWatcher creates a watcher over the given directory roots.
func NewContentWatcher(roots []string, debounce time.Duration, onChange func(ctx context.Context)) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDaemon, "failed to create file watcher").Build()
	}

	cw := &ContentWatcher{
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		stopChan: make(chan struct{}),
		kickChan: make(chan struct{}, 1),
	}
	for _, root := range roots {
		if err := cw.addRecursive(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return cw, nil
}

// addRecursive watches root and every subdirectory. fsnotify does not watch
// recursively on its own.
func (cw *ContentWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to walk content root").
				WithContext("path", path).Build()
		}
		if !d.IsDir() {
			return nil
		}
		if err := cw.watcher.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to watch directory").
				WithContext("path", path).Build()
		}
		return nil
	})
}

// Start launches the watch and debounce loops.
func (cw *ContentWatcher) Start(ctx context.Context) {
	slog.Info("Starting content watcher", slog.Duration("debounce", cw.debounce))
	go cw.watchLoop(ctx)
	go cw.rebuildLoop(ctx)
}

// Stop shuts the watcher down.
func (cw *ContentWatcher) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	select {
	case <-cw.stopChan:
		return
	default:
	}
	close(cw.stopChan)
	if err := cw.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", logfields.Error(err))
	}
}

func (cw *ContentWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !isContentEvent(event) {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = cw.watcher.Add(event.Name)
					continue
				}
			}
			slog.Debug("Content change detected", logfields.ContentPath(event.Name))
			cw.kick()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop coalesces bursts of events into a single onChange call.
func (cw *ContentWatcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.kickChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounce, func() {
				cw.onChange(ctx)
			})
		}
	}
}

func (cw *ContentWatcher) kick() {
	select {
	case cw.kickChan <- struct{}{}:
	default:
	}
}

// isContentEvent filters events down to relevant file changes.
func isContentEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".json" || ext == ""
}
