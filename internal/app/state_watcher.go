package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/service"
)

// stateWatcher polls the project list for changes, including ones written by
// another process sharing the same storage (e.g. the standalone MCP server),
// and emits EventProjectsChanged so browsers refresh their project list.
type stateWatcher struct {
	projects *service.ProjectStore
	emitter  service.EventEmitter
	logger   *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	last   string // count + max updated_at
	stopCh chan struct{}
	done   chan struct{}
}

func newStateWatcher(projects *service.ProjectStore, emitter service.EventEmitter, logger *zap.Logger, interval time.Duration) *stateWatcher {
	return &stateWatcher{
		projects: projects,
		emitter:  emitter,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the polling loop. Should be called once.
func (w *stateWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop and waits for it to exit.
func (w *stateWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	<-w.done
	w.stopCh = nil
}

func (w *stateWatcher) pollLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check()
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		}
	}
}

// check returns true when it emitted a change.
func (w *stateWatcher) check() bool {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval+5*time.Second)
	defer cancel()

	projects, err := w.projects.List(ctx)
	if err != nil {
		w.logger.Debug("state watcher: list projects", zap.Error(err))
		return false
	}

	var latest time.Time
	for _, p := range projects {
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	fingerprint := fmt.Sprintf("%d:%d", len(projects), latest.UnixNano())

	w.mu.Lock()
	changed := w.last != "" && w.last != fingerprint
	w.last = fingerprint
	w.mu.Unlock()

	if changed {
		w.emitter.Emit(ctx, service.EventProjectsChanged, map[string]int{"projects": len(projects)})
	}
	return changed
}
