package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a catalog override file into a Library whenever it is
// written. A file that fails to parse is logged and the previous catalog kept.
type Watcher struct {
	watcher *fsnotify.Watcher
	lib     *Library
	base    *Library
	path    string
	logger  *zap.Logger

	mu       sync.Mutex
	onReload func()
	done     chan struct{}
}

// Watch applies the override at path to lib immediately (when the file
// exists) and then on every change. base supplies the sections the override
// leaves empty.
func Watch(lib, base *Library, path string, logger *zap.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve override path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen too.
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{
		watcher: fw,
		lib:     lib,
		base:    base,
		path:    absPath,
		logger:  logger,
		done:    make(chan struct{}),
	}
	w.reload()

	go w.watchLoop()
	return w, nil
}

// OnReload registers a callback run after each successful reload.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) reload() bool {
	next, err := LoadOverride(w.base, w.path)
	if err != nil {
		w.logger.Warn("catalog override not applied", zap.String("path", w.path), zap.Error(err))
		return false
	}
	w.lib.Replace(next)
	w.logger.Info("catalog override applied",
		zap.String("path", w.path),
		zap.Int("components", len(next.Components())),
		zap.Int("templates", len(next.Templates())),
	)

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
	return true
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			if absPath == w.path {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
